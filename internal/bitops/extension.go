// Package bitops operates on individual bits and on byte buffers.
//
// It provides:
//   - XOR combination of byte buffers, accelerated with the widest vector
//     extension the running CPU offers (AVX, SSE2, SSE, legacy 64-bit
//     lanes, NEON) and a scalar fallback
//   - Fixed-size bit sets for tracking which alphabet indices are in use
//
// The vector path is detected once per process and cached. It is a pure
// function of the host CPU, so the cached choice is safe to share between
// goroutines without synchronization once computed.
package bitops

import (
	"fmt"
	"strings"
)

// Extension enumerates the vector extensions used to accelerate XOR.
// Values are distinct bits so a set of runnable extensions fits in one
// Extension value.
type Extension uint32

const (
	ExtensionNone     Extension = 0
	ExtensionLegacy64 Extension = 1 << (iota - 1)
	ExtensionSSE
	ExtensionSSE2
	ExtensionAVX
	ExtensionNEON
)

// ladder lists the accelerated extensions from widest to narrowest.
var ladder = []Extension{
	ExtensionAVX,
	ExtensionNEON,
	ExtensionSSE2,
	ExtensionSSE,
	ExtensionLegacy64,
}

// String returns a human-readable name for the extension.
func (e Extension) String() string {
	switch e {
	case ExtensionNone:
		return "none"
	case ExtensionLegacy64:
		return "legacy64"
	case ExtensionSSE:
		return "sse"
	case ExtensionSSE2:
		return "sse2"
	case ExtensionAVX:
		return "avx"
	case ExtensionNEON:
		return "neon"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint32(e))
	}
}

// LaneWidth returns the number of bytes processed per vector operation.
func (e Extension) LaneWidth() int {
	switch e {
	case ExtensionLegacy64:
		return 8
	case ExtensionSSE, ExtensionSSE2, ExtensionNEON:
		return 16
	case ExtensionAVX:
		return 32
	default:
		return 1
	}
}

// Has reports whether every bit of x is set in e.
func (e Extension) Has(x Extension) bool {
	return e&x == x
}

// Widest returns the widest extension in the set e, or ExtensionNone.
func (e Extension) Widest() Extension {
	for _, x := range ladder {
		if e.Has(x) {
			return x
		}
	}
	return ExtensionNone
}

// ParseExtension parses an extension name. "auto" and "" parse to
// ExtensionNone with auto set.
func ParseExtension(s string) (ext Extension, auto bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ExtensionNone, true, nil
	case "none", "scalar":
		return ExtensionNone, false, nil
	case "legacy64", "mmx":
		return ExtensionLegacy64, false, nil
	case "sse":
		return ExtensionSSE, false, nil
	case "sse2":
		return ExtensionSSE2, false, nil
	case "avx":
		return ExtensionAVX, false, nil
	case "neon":
		return ExtensionNEON, false, nil
	default:
		return ExtensionNone, false, fmt.Errorf("bitops: unknown vector extension %q", s)
	}
}
