//go:build (386 || amd64) && !purego

package entropy

import "golang.org/x/sys/cpu"

// rdrand32 executes RDRAND with a 32-bit destination. ok is false when
// the carry flag is clear, meaning no random value was ready.
func rdrand32() (val uint32, ok bool)

func hasRDRAND() bool {
	return cpu.X86.HasRDRAND
}

func rdrandWord() (uint32, error) {
	v, ok := rdrand32()
	if !ok {
		return 0, ErrUnderflow
	}
	return v, nil
}
