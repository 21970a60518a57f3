package entropy

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"github.com/viathefalcon/waveson-passwords/internal/security"
)

const wordSize = 4

// WordReader returns one 32-bit random word. It returns ErrUnderflow when
// the hardware had nothing ready and the call should be retried; any other
// error aborts the current fill.
type WordReader func() (uint32, error)

// InstructionSource draws entropy from a CPU random-number instruction,
// one 32-bit word per invocation.
type InstructionSource struct {
	available bool
	next      WordReader
	counters
}

// NewInstructionSource returns a source backed by RDRAND. It is
// unavailable on CPUs or builds without the instruction.
func NewInstructionSource() *InstructionSource {
	return NewInstructionSourceFrom(hasRDRAND(), rdrandWord)
}

// NewInstructionSourceFrom returns a source that reads words from next.
func NewInstructionSourceFrom(available bool, next WordReader) *InstructionSource {
	return &InstructionSource{available: available && next != nil, next: next}
}

func (s *InstructionSource) Cap() Caps       { return CapRDRAND }
func (s *InstructionSource) Name() string    { return "RDRAND" }
func (s *InstructionSource) Available() bool { return s.available }
func (s *InstructionSource) Close() error    { return nil }

func (s *InstructionSource) Stats() Stats {
	return s.snapshot(s.Cap(), s.Name(), s.available)
}

// Fill writes len(buf) bytes. Bytes up to the first 4-byte boundary and
// after the last one are taken from the low end of a whole word; the rest
// is written a word at a time in little-endian order.
func (s *InstructionSource) Fill(buf []byte) int {
	if !s.available {
		s.failure(ErrSourceUnavailable)
		return 0
	}
	n := len(buf)
	if n == 0 {
		return 0
	}

	var scratch [wordSize]byte
	defer security.Wipe(scratch[:])

	prefix := int((wordSize - uintptr(unsafe.Pointer(&buf[0]))%wordSize) % wordSize)
	if prefix > n {
		prefix = n
	}

	partial := func(dst []byte) error {
		w, err := s.word()
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(scratch[:], w)
		copy(dst, scratch[:])
		return nil
	}

	if prefix > 0 {
		if err := partial(buf[:prefix]); err != nil {
			return s.fail(buf, err)
		}
	}
	i := prefix
	for ; i+wordSize <= n; i += wordSize {
		w, err := s.word()
		if err != nil {
			return s.fail(buf, err)
		}
		binary.LittleEndian.PutUint32(buf[i:], w)
	}
	if i < n {
		if err := partial(buf[i:]); err != nil {
			return s.fail(buf, err)
		}
	}

	s.success(n)
	return n
}

// word reads one word, retrying for as long as the hardware underflows.
func (s *InstructionSource) word() (uint32, error) {
	for {
		w, err := s.next()
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrUnderflow) {
			return 0, err
		}
	}
}

func (s *InstructionSource) fail(buf []byte, err error) int {
	security.Wipe(buf)
	s.failure(err)
	return 0
}
