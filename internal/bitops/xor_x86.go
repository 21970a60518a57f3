//go:build (386 || amd64) && !purego

package bitops

// supportedVendors are the CPU vendors whose feature flags are trusted.
var supportedVendors = map[string]bool{
	"GenuineIntel": true,
	"AuthenticAMD": true,
}

// cpuVendor assembles the vendor string from CPUID leaf 0, which stores it
// in EBX, EDX, ECX order.
func cpuVendor(ebx, edx, ecx uint32) string {
	var b [12]byte
	for i, reg := range []uint32{ebx, edx, ecx} {
		b[i*4] = byte(reg)
		b[i*4+1] = byte(reg >> 8)
		b[i*4+2] = byte(reg >> 16)
		b[i*4+3] = byte(reg >> 24)
	}
	return string(b[:])
}

func supportedVendor(vendor string) bool {
	return supportedVendors[vendor]
}
