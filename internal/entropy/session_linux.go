//go:build linux

// TPM sessions on Linux go through the kernel character devices.
// /dev/tpmrm0 (resource manager) only exists for TPM 2.0; /dev/tpm0 is the
// direct device for either family.

package entropy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpmutil"
)

var (
	sysfsTPMRoot = "/sys/class/tpm"
	devRoot      = "/dev"
)

type transportSession struct {
	tpm transport.TPMCloser
}

func (s *transportSession) Submit(cmd, rsp []byte) (int, error) {
	out, err := s.tpm.Send(cmd)
	if err != nil {
		return 0, err
	}
	return copy(rsp, out), nil
}

func (s *transportSession) Close() error {
	return s.tpm.Close()
}

func openSession(c Caps, device string) (Session, error) {
	path := device
	if path == "" {
		var err error
		if path, err = devicePath(c); err != nil {
			return nil, err
		}
	}
	t, err := openTransport(c, path)
	if err != nil {
		return nil, fmt.Errorf("entropy: open %s: %w", path, err)
	}
	return &transportSession{tpm: t}, nil
}

// openTransport opens path for the given family. transport.OpenTPM checks
// for a TPM 2.0 reply, so TPM 1.2 devices are opened raw.
func openTransport(c Caps, path string) (transport.TPMCloser, error) {
	if c != CapTPM12 {
		return transport.OpenTPM(path)
	}
	rwc, err := tpmutil.OpenTPM(path)
	if err != nil {
		return nil, err
	}
	return transport.FromReadWriteCloser(rwc), nil
}

// devicePath picks the character device for the requested TPM family.
func devicePath(c Caps) (string, error) {
	major := tpmVersionMajor("tpm0")
	rm := filepath.Join(devRoot, "tpmrm0")
	direct := filepath.Join(devRoot, "tpm0")
	switch c {
	case CapTPM20:
		if exists(rm) && major != "1" {
			return rm, nil
		}
		if major == "2" && exists(direct) {
			return direct, nil
		}
	case CapTPM12:
		if (major == "1" || (major == "" && !exists(rm))) && exists(direct) {
			return direct, nil
		}
	}
	return "", fmt.Errorf("%w: no %s device", ErrSourceUnavailable, c)
}

// tpmVersionMajor reads the kernel-reported TPM family, or "" if the
// kernel does not expose it.
func tpmVersionMajor(dev string) string {
	b, err := os.ReadFile(filepath.Join(sysfsTPMRoot, dev, "tpm_version_major"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
