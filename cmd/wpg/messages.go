package main

import (
	"fmt"

	"github.com/viathefalcon/waveson-passwords/internal/entropy"
)

// failureMessage describes the first source that failed.
func failureMessage(failed entropy.Caps) string {
	switch failed.First() {
	case entropy.CapRDRAND:
		return "the processor's RDRAND instruction failed to supply random numbers"
	case entropy.CapTPM12:
		return "the TPM 1.2 module failed to supply random numbers"
	case entropy.CapTPM20:
		return "the TPM 2.0 module failed to supply random numbers"
	default:
		return "an unknown error occurred while generating the password"
	}
}

func noSourceMessage(want entropy.Caps) string {
	return fmt.Sprintf("none of the requested entropy sources (%s) is available", want)
}
