package entropy

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/google/go-tpm/tpm2"

	"github.com/viathefalcon/waveson-passwords/internal/security"
)

// Session submits raw TPM commands. Submit writes the response into rsp
// and returns its length.
type Session interface {
	Submit(cmd, rsp []byte) (int, error)
	Close() error
}

// protocol encodes GetRandom commands and decodes their responses for one
// TPM family.
type protocol interface {
	cap() Caps
	name() string
	// header is the size of both the command and the response header.
	header() int
	maxRequest() int
	encode(cmd []byte, requested int)
	// decode returns the random bytes carried by rsp, at most requested.
	decode(rsp []byte, requested int) ([]byte, error)
}

// TPM 1.2 constants.
const (
	tpm12TagRQUCommand uint16 = 0x00C1
	tpm12OrdGetRandom  uint32 = 0x00000046
	tpm12HeaderSize           = 14
)

// tpm12 implements TPM_ORD_GetRandom.
//
//	command:  tag(2) paramSize(4) ordinal(4) bytesRequested(4)
//	response: tag(2) paramSize(4) returnCode(4) randomBytesSize(4) bytes
type tpm12 struct{}

func (tpm12) cap() Caps       { return CapTPM12 }
func (tpm12) name() string    { return "TPM 1.2" }
func (tpm12) header() int     { return tpm12HeaderSize }
func (tpm12) maxRequest() int { return math.MaxInt32 }

func (tpm12) encode(cmd []byte, requested int) {
	binary.BigEndian.PutUint16(cmd[0:], tpm12TagRQUCommand)
	binary.BigEndian.PutUint32(cmd[2:], tpm12HeaderSize)
	binary.BigEndian.PutUint32(cmd[6:], tpm12OrdGetRandom)
	binary.BigEndian.PutUint32(cmd[10:], uint32(requested))
}

func (tpm12) decode(rsp []byte, requested int) ([]byte, error) {
	if len(rsp) < tpm12HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortResponse, len(rsp))
	}
	if rc := binary.BigEndian.Uint32(rsp[6:]); rc != 0 {
		return nil, fmt.Errorf("entropy: tpm 1.2 returned 0x%08X", rc)
	}
	generated := int(binary.BigEndian.Uint32(rsp[10:]))
	if generated == 0 {
		return nil, ErrEmptyResponse
	}
	if generated > requested {
		generated = requested
	}
	if tpm12HeaderSize+generated > len(rsp) {
		return nil, fmt.Errorf("%w: want %d random bytes, have %d", ErrShortResponse, generated, len(rsp)-tpm12HeaderSize)
	}
	return rsp[tpm12HeaderSize : tpm12HeaderSize+generated], nil
}

const tpm20HeaderSize = 12

// tpm20 implements TPM2_GetRandom without sessions.
//
//	command:  tag(2) commandSize(4) commandCode(4) bytesRequested(2)
//	response: tag(2) responseSize(4) responseCode(4) size(2) bytes
type tpm20 struct{}

func (tpm20) cap() Caps       { return CapTPM20 }
func (tpm20) name() string    { return "TPM 2.0" }
func (tpm20) header() int     { return tpm20HeaderSize }
func (tpm20) maxRequest() int { return math.MaxUint16 }

func (tpm20) encode(cmd []byte, requested int) {
	binary.BigEndian.PutUint16(cmd[0:], uint16(tpm2.TPMSTNoSessions))
	binary.BigEndian.PutUint32(cmd[2:], tpm20HeaderSize)
	binary.BigEndian.PutUint32(cmd[6:], uint32(tpm2.TPMCCGetRandom))
	binary.BigEndian.PutUint16(cmd[10:], uint16(requested))
}

func (tpm20) decode(rsp []byte, requested int) ([]byte, error) {
	if len(rsp) < 10 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortResponse, len(rsp))
	}
	if rc := binary.BigEndian.Uint32(rsp[6:]); rc != 0 {
		return nil, fmt.Errorf("entropy: tpm 2.0 get random: %w", tpm2.TPMRC(rc))
	}
	size := int(binary.BigEndian.Uint32(rsp[2:]))
	if size > len(rsp) {
		size = len(rsp)
	}
	generated := size - tpm20HeaderSize
	if generated <= 0 {
		return nil, ErrEmptyResponse
	}
	if generated > requested {
		generated = requested
	}
	return rsp[tpm20HeaderSize : tpm20HeaderSize+generated], nil
}

// TPMSource draws entropy from a TPM's GetRandom command. A request larger
// than one response provides is satisfied over several round trips.
type TPMSource struct {
	mu      sync.Mutex
	proto   protocol
	session Session
	counters
}

// NewTPM12Source opens a TPM 1.2 session. The source is unavailable if no
// TPM 1.2 can be reached.
func NewTPM12Source() *TPMSource {
	s, _ := openSession(CapTPM12, "")
	return newTPMSource(tpm12{}, s)
}

// NewTPM20Source opens a TPM 2.0 session, on device if it is non-empty.
// The source is unavailable if no TPM 2.0 can be reached.
func NewTPM20Source(device string) *TPMSource {
	s, _ := openSession(CapTPM20, device)
	return newTPMSource(tpm20{}, s)
}

// NewTPMSourceWithSession returns a source for the TPM family identified
// by c that submits through session. It returns nil for non-TPM caps.
func NewTPMSourceWithSession(c Caps, session Session) *TPMSource {
	switch c {
	case CapTPM12:
		return newTPMSource(tpm12{}, session)
	case CapTPM20:
		return newTPMSource(tpm20{}, session)
	}
	return nil
}

func newTPMSource(p protocol, session Session) *TPMSource {
	return &TPMSource{proto: p, session: session}
}

func (s *TPMSource) Cap() Caps    { return s.proto.cap() }
func (s *TPMSource) Name() string { return s.proto.name() }

func (s *TPMSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

func (s *TPMSource) Stats() Stats {
	return s.snapshot(s.Cap(), s.Name(), s.Available())
}

// Fill submits GetRandom until buf is full. Any failed submission or
// unusable response fails the whole request.
func (s *TPMSource) Fill(buf []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		s.failure(ErrSourceUnavailable)
		return 0
	}
	if len(buf) == 0 {
		return 0
	}

	hdr := s.proto.header()
	chunk := len(buf)
	if limit := s.proto.maxRequest(); chunk > limit {
		chunk = limit
	}
	cmd := make([]byte, hdr)
	rsp := make([]byte, hdr+chunk)
	defer security.Wipe(rsp)

	filled := 0
	for filled < len(buf) {
		requested := len(buf) - filled
		if requested > chunk {
			requested = chunk
		}
		s.proto.encode(cmd, requested)

		n, err := s.session.Submit(cmd, rsp)
		if err != nil {
			return s.fail(buf, fmt.Errorf("entropy: %s submit: %w", s.proto.name(), err))
		}
		if n > len(rsp) {
			n = len(rsp)
		}
		data, err := s.proto.decode(rsp[:n], requested)
		if err != nil {
			return s.fail(buf, err)
		}
		filled += copy(buf[filled:], data)
	}

	s.success(filled)
	return filled
}

func (s *TPMSource) fail(buf []byte, err error) int {
	security.Wipe(buf)
	s.failure(err)
	return 0
}

// Close releases the TPM session.
func (s *TPMSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}
