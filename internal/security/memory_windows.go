//go:build windows

package security

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func lockMemory(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return windows.VirtualLock(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}

func unlockMemory(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return windows.VirtualUnlock(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}
