package entropy

import (
	"log/slog"
)

// Options configures source discovery.
type Options struct {
	// TPMDevice overrides the TPM 2.0 device path where the platform
	// supports it.
	TPMDevice string

	Logger *slog.Logger
}

// Open builds the source for a single capability. The returned source may
// be unavailable; callers should check Available.
func Open(c Caps, opts Options) Source {
	switch c {
	case CapRDRAND:
		return NewInstructionSource()
	case CapTPM12:
		return NewTPM12Source()
	case CapTPM20:
		return NewTPM20Source(opts.TPMDevice)
	}
	return nil
}

// Discover opens every capability in want and returns the sources that
// are available, lowest capability first. Unavailable sources are closed.
func Discover(want Caps, opts Options) []Source {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var sources []Source
	for _, c := range (want & CapAll).Each() {
		src := Open(c, opts)
		if src == nil {
			continue
		}
		if !src.Available() {
			log.Debug("entropy source unavailable", "source", c.String())
			_ = src.Close()
			continue
		}
		log.Debug("entropy source available", "source", c.String(), "name", src.Name())
		sources = append(sources, src)
	}
	return sources
}

// CapsOf returns the union of the capabilities of sources.
func CapsOf(sources []Source) Caps {
	var caps Caps
	for _, s := range sources {
		caps |= s.Cap()
	}
	return caps
}

// CloseAll closes every source and returns the first error.
func CloseAll(sources []Source) error {
	var first error
	for _, s := range sources {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
