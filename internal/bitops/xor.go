package bitops

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnsupportedExtension is returned when a vector extension is requested
// that the running CPU (or this build) cannot execute.
var ErrUnsupportedExtension = errors.New("bitops: vector extension not supported on this host")

// XOR applies exclusive-or to pairs of byte buffers.
type XOR interface {
	// Apply sets front[i] ^= back[i] for every i in [0, n) and returns n.
	// Both buffers must hold at least n bytes.
	Apply(front, back []byte, n int) int

	// Extension identifies the vector extension backing this implementation.
	Extension() Extension
}

// scalarXOR is the byte-at-a-time fallback. It cannot fail.
type scalarXOR struct{}

func (scalarXOR) Apply(front, back []byte, n int) int {
	xorBytes(front[:n], back[:n])
	return n
}

func (scalarXOR) Extension() Extension { return ExtensionNone }

// Scalar returns the byte-at-a-time implementation.
func Scalar() XOR { return scalarXOR{} }

func xorBytes(front, back []byte) {
	// Hoist bounds checks.
	back = back[:len(front)]
	for i := range front {
		front[i] ^= back[i]
	}
}

// vectorXOR processes whole lanes with an accelerated kernel and hands the
// trailing partial lane to the scalar loop.
type vectorXOR struct {
	ext    Extension
	lane   int
	kernel func(front, back []byte) // len(front) is a multiple of lane
}

func (v *vectorXOR) Apply(front, back []byte, n int) int {
	front, back = front[:n], back[:n]

	full := n - n%v.lane
	if full > 0 {
		v.kernel(front[:full], back[:full])
	}
	xorBytes(front[full:], back[full:])
	return n
}

func (v *vectorXOR) Extension() Extension { return v.ext }

// Process-wide selection.
var (
	bestOnce sync.Once
	best     XOR
)

// Best returns the implementation backed by the widest vector extension
// detected on this host. Detection runs once per process.
func Best() XOR {
	bestOnce.Do(func() {
		x, err := New(Available().Widest())
		if err != nil {
			x = Scalar()
		}
		best = x
	})
	return best
}

// Available returns the set of extensions this build can execute on the
// running CPU. ExtensionNone (scalar) is always runnable and has no bit.
func Available() Extension {
	return available()
}

// New returns the implementation for ext, or ErrUnsupportedExtension if
// the host cannot run it.
func New(ext Extension) (XOR, error) {
	if ext == ExtensionNone {
		return Scalar(), nil
	}
	if !Available().Has(ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}
	kernel := kernelFor(ext)
	if kernel == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}
	return &vectorXOR{ext: ext, lane: ext.LaneWidth(), kernel: kernel}, nil
}

// All returns one implementation per runnable extension, scalar first.
func All() []XOR {
	impls := []XOR{Scalar()}
	avail := Available()
	for i := len(ladder) - 1; i >= 0; i-- {
		if !avail.Has(ladder[i]) {
			continue
		}
		if x, err := New(ladder[i]); err == nil {
			impls = append(impls, x)
		}
	}
	return impls
}

// debugXOR cross-checks a delegate against the scalar path.
type debugXOR struct {
	delegate XOR
	logger   *slog.Logger
}

// Debug wraps x so that every Apply is cross-checked against the scalar
// result. Both results are logged at debug level in hex and a mismatch is
// logged at error level. The logged bytes are raw entropy: diagnostic use only.
func Debug(x XOR, logger *slog.Logger) XOR {
	if logger == nil {
		logger = slog.Default()
	}
	return &debugXOR{delegate: x, logger: logger}
}

func (d *debugXOR) Apply(front, back []byte, n int) int {
	expected := make([]byte, n)
	copy(expected, front[:n])
	xorBytes(expected, back[:n])

	result := d.delegate.Apply(front, back, n)

	d.logger.Debug("xor cross-check",
		"scalar", hex.EncodeToString(expected),
		"delegate", hex.EncodeToString(front[:n]),
		"extension", d.delegate.Extension().String(),
	)
	for i := range expected {
		if expected[i] != front[i] {
			d.logger.Error("xor mismatch",
				"extension", d.delegate.Extension().String(),
				"offset", i,
				"length", n,
			)
			break
		}
	}

	for i := range expected {
		expected[i] = 0
	}
	return result
}

func (d *debugXOR) Extension() Extension { return d.delegate.Extension() }
