// Package entropy provides hardware random-number sources.
//
// Three backends are supported, each identified by one capability bit:
//   - RDRAND: the CPU's random-number instruction
//   - TPM 1.2: TPM_ORD_GetRandom submitted through a TPM session
//   - TPM 2.0: TPM2_CC_GetRandom submitted through a TPM session
//
// A source either satisfies a fill request completely or reports zero
// bytes. Sources are opened once when constructed; a source that cannot be
// reached is excluded rather than surfaced as an error.
package entropy

import (
	"fmt"
	"math/bits"
	"strings"
)

// Caps is a set of entropy-source capabilities. A single capability is a
// Caps with exactly one bit set.
type Caps uint32

const (
	CapNone   Caps = 0
	CapRDRAND Caps = 1
	CapTPM12  Caps = 2
	CapTPM20  Caps = 4

	// CapAll is every capability this package knows how to build.
	CapAll = CapRDRAND | CapTPM12 | CapTPM20
)

// capNames maps single capabilities to their config/CLI names.
var capNames = []struct {
	cap  Caps
	name string
}{
	{CapRDRAND, "rdrand"},
	{CapTPM12, "tpm12"},
	{CapTPM20, "tpm20"},
}

// Has reports whether every bit of c is in s.
func (s Caps) Has(c Caps) bool {
	return s&c == c
}

// First returns the lowest-valued capability in s, or CapNone.
func (s Caps) First() Caps {
	if s == CapNone {
		return CapNone
	}
	return Caps(1) << bits.TrailingZeros32(uint32(s))
}

// Each returns the individual capabilities in s, lowest first.
func (s Caps) Each() []Caps {
	var out []Caps
	for rest := s; rest != CapNone; {
		c := rest.First()
		out = append(out, c)
		rest &^= c
	}
	return out
}

// Names returns the names of the known capabilities in s.
func (s Caps) Names() []string {
	var names []string
	for _, cn := range capNames {
		if s.Has(cn.cap) {
			names = append(names, cn.name)
		}
	}
	return names
}

// String returns the capability names joined with "|", or "none".
func (s Caps) String() string {
	if s == CapNone {
		return "none"
	}
	names := s.Names()
	if unknown := s &^ CapAll; unknown != 0 {
		names = append(names, fmt.Sprintf("0x%X", uint32(unknown)))
	}
	return strings.Join(names, "|")
}

// ParseCaps parses capability names separated by commas, pipes or spaces.
// "all" selects every capability and "none" (or "") selects none.
func ParseCaps(s string) (Caps, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ' '
	})
	return ParseCapNames(fields)
}

// ParseCapNames parses a list of capability names.
func ParseCapNames(names []string) (Caps, error) {
	var caps Caps
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "", "none":
			continue
		case "all":
			caps |= CapAll
			continue
		case "tpm":
			caps |= CapTPM12 | CapTPM20
			continue
		}
		found := false
		for _, cn := range capNames {
			if cn.name == name {
				caps |= cn.cap
				found = true
				break
			}
		}
		if !found {
			return CapNone, fmt.Errorf("entropy: unknown source %q", name)
		}
	}
	return caps, nil
}
