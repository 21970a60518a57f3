//go:build amd64 && !purego

package bitops

import (
	"golang.org/x/sys/cpu"
)

// CPUID leaf 1 EDX feature bits
const (
	cpuidSSE  = 1 << 25
	cpuidSSE2 = 1 << 26
)

// cpuid executes the CPUID instruction.
//
//go:noescape
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

//go:noescape
func xorSSE(dst, src *byte, n int)

//go:noescape
func xorSSE2(dst, src *byte, n int)

//go:noescape
func xorAVX(dst, src *byte, n int)

func available() Extension {
	maxLeaf, ebx, ecx, edx := cpuid(0, 0)
	if !supportedVendor(cpuVendor(ebx, edx, ecx)) || maxLeaf < 1 {
		return ExtensionNone
	}

	var set Extension
	_, _, _, edx = cpuid(1, 0)
	if edx&cpuidSSE != 0 {
		set |= ExtensionSSE
	}
	if edx&cpuidSSE2 != 0 && cpu.X86.HasSSE2 {
		set |= ExtensionSSE2
	}
	// HasAVX already requires OSXSAVE and YMM state enabled in XCR0.
	if cpu.X86.HasAVX {
		set |= ExtensionAVX
	}
	return set
}

func kernelFor(ext Extension) func(front, back []byte) {
	switch ext {
	case ExtensionSSE:
		return func(front, back []byte) { xorSSE(&front[0], &back[0], len(front)) }
	case ExtensionSSE2:
		return func(front, back []byte) { xorSSE2(&front[0], &back[0], len(front)) }
	case ExtensionAVX:
		return func(front, back []byte) { xorAVX(&front[0], &back[0], len(front)) }
	default:
		return nil
	}
}
