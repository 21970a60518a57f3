package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipe(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	Wipe(data)
	assert.Equal(t, make([]byte, 9), data)

	// Empty and nil slices are no-ops.
	Wipe(nil)
	Wipe([]byte{})
}

func TestWipeRunes(t *testing.T) {
	data := []rune("pässwörd")
	WipeRunes(data)
	for i, r := range data {
		assert.Zero(t, r, "rune %d not wiped", i)
	}
	WipeRunes(nil)
}

func TestSecureBytesLifecycle(t *testing.T) {
	sb := NewSecureBytes(64)
	require.Len(t, sb.Bytes(), 64)

	buf := sb.Bytes()
	for i := range buf {
		buf[i] = 0xAA
	}

	sb.Clear()
	assert.Equal(t, make([]byte, 64), sb.Bytes())

	for i := range buf {
		buf[i] = 0x55
	}
	sb.Destroy()
	assert.Equal(t, make([]byte, 64), buf, "Destroy must wipe the backing array")
	assert.Nil(t, sb.Bytes())
	assert.False(t, sb.Locked())

	// Second Destroy is a no-op.
	sb.Destroy()
}

func TestSecureBytesZeroLength(t *testing.T) {
	sb := NewSecureBytes(0)
	assert.Empty(t, sb.Bytes())
	assert.False(t, sb.Locked())
	sb.Destroy()
}

func TestWipeSubslicesLeavesNeighbours(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	Wipe(data[3:9])
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0, 0, 10, 11, 12}, data)

	runes := []rune("abcdefgh")
	WipeRunes(runes[5:])
	assert.Equal(t, []rune{'a', 'b', 'c', 'd', 'e', 0, 0, 0}, runes)

	// A wipe of the last byte of a buffer stays inside its allocation.
	sb := NewSecureBytes(33)
	defer sb.Destroy()
	buf := sb.Bytes()
	for i := range buf {
		buf[i] = 0xFF
	}
	Wipe(buf[32:])
	assert.Zero(t, buf[32])
	assert.Equal(t, byte(0xFF), buf[31])
	sb.Clear()
	assert.Equal(t, make([]byte, 33), sb.Bytes())
}
