// Package security provides secure memory handling for high-entropy material.
//
// This package implements:
// - Secure memory wiping (prevents recovery of random bytes and passwords)
// - Memory locking (prevents swapping of sensitive buffers)
package security

import (
	"runtime"
	"sync"
)

// SecureBytes is a byte slice that gets zeroed when freed.
// Use this for random-number scratch space and derived password bytes.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes creates a new SecureBytes with the given capacity.
// The memory is locked to prevent swapping (if privileges allow).
func NewSecureBytes(size int) *SecureBytes {
	sb := &SecureBytes{
		data: make([]byte, size),
	}

	// Non-fatal: without privileges (or on platforms without locking)
	// the buffer is still wiped on Destroy.
	if err := lockMemory(sb.data); err == nil && len(sb.data) > 0 {
		sb.locked = true
	}

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})

	return sb
}

// Bytes returns the underlying byte slice.
// The returned slice must not outlive the SecureBytes.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Locked reports whether the buffer is currently page-locked.
func (s *SecureBytes) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Clear wipes the contents without releasing the buffer.
func (s *SecureBytes) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	wipeBytes(s.data)
}

// Destroy securely wipes and unlocks the memory.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	wipeBytes(s.data)

	if s.locked {
		_ = unlockMemory(s.data)
		s.locked = false
	}

	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// Wipe overwrites a byte slice with zeros.
func Wipe(data []byte) {
	wipeBytes(data)
}

// WipeRunes overwrites a rune slice with zeros.
func WipeRunes(data []rune) {
	clear(data)
	runtime.KeepAlive(data)
}

// wipeBytes zeroes data. KeepAlive keeps the stores from being dropped
// as dead when data is not read again.
func wipeBytes(data []byte) {
	clear(data)
	runtime.KeepAlive(data)
}
