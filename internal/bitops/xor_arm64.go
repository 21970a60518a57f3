//go:build arm64 && !purego

package bitops

//go:noescape
func xorNEON(dst, src *byte, n int)

// Advanced SIMD is mandatory on ARMv8-A, so NEON is always runnable.
func available() Extension {
	return ExtensionNEON
}

func kernelFor(ext Extension) func(front, back []byte) {
	if ext == ExtensionNEON {
		return func(front, back []byte) { xorNEON(&front[0], &back[0], len(front)) }
	}
	return nil
}
