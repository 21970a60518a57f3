//go:build !unix && !windows

package security

import "errors"

// Fallback implementations for platforms without page locking.

var errLockUnsupported = errors.New("security: memory locking not supported")

func lockMemory([]byte) error   { return errLockUnsupported }
func unlockMemory([]byte) error { return nil }
