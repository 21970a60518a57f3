//go:build 386 && !purego

package bitops

import (
	"encoding/binary"
)

// CPUID leaf 1 EDX feature bits
const cpuidMMX = 1 << 23

// cpuid executes the CPUID instruction.
//
//go:noescape
func cpuid(eaxArg, ecxArg uint32) (eax, ebx, ecx, edx uint32)

// On 32-bit hosts the 64-bit lane path is the only accelerated one.
func available() Extension {
	maxLeaf, ebx, ecx, edx := cpuid(0, 0)
	if !supportedVendor(cpuVendor(ebx, edx, ecx)) || maxLeaf < 1 {
		return ExtensionNone
	}
	_, _, _, edx = cpuid(1, 0)
	if edx&cpuidMMX != 0 {
		return ExtensionLegacy64
	}
	return ExtensionNone
}

func kernelFor(ext Extension) func(front, back []byte) {
	if ext == ExtensionLegacy64 {
		return xorLegacy64
	}
	return nil
}

// xorLegacy64 combines eight bytes per step.
func xorLegacy64(front, back []byte) {
	for i := 0; i+8 <= len(front); i += 8 {
		v := binary.LittleEndian.Uint64(front[i:]) ^ binary.LittleEndian.Uint64(back[i:])
		binary.LittleEndian.PutUint64(front[i:], v)
	}
}
