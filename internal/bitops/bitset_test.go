package bitops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsetSizes(t *testing.T) {
	for _, size := range []int{0, 1, 31, 32, 33, 64, 65, 255} {
		b := NewBitset(size)
		assert.Equal(t, size, b.Size())
		assert.Len(t, b.words, (size+31)/32)
	}
}

func TestBitsetSetIsolation(t *testing.T) {
	const size = 255
	for i := 0; i < size; i++ {
		b := NewBitset(size)
		b.Set(i)
		for j := 0; j < size; j++ {
			assert.Equal(t, i == j, b.IsSet(j), "set(%d) affected is_set(%d)", i, j)
		}
	}
}

func setBits(b *Bitset) int {
	n := 0
	for i := 0; i < b.Size(); i++ {
		if b.IsSet(i) {
			n++
		}
	}
	return n
}

func TestBitsetAccumulatesAndResets(t *testing.T) {
	b := NewBitset(100)
	for i := 0; i < 100; i += 3 {
		b.Set(i)
	}
	assert.Equal(t, 34, setBits(b))

	// Setting twice is idempotent.
	b.Set(0)
	assert.Equal(t, 34, setBits(b))

	b.Reset()
	for i := 0; i < 100; i++ {
		assert.False(t, b.IsSet(i), "index %d set after Reset", i)
	}
	assert.Equal(t, 100, b.Size())
}

func TestBitsetOutOfRange(t *testing.T) {
	b := NewBitset(10)
	assert.Panics(t, func() { b.Set(10) })
	assert.Panics(t, func() { b.IsSet(-1) })
}

func TestEmptyBitset(t *testing.T) {
	b := NewEmptyBitset(4)
	for i := 0; i < 4; i++ {
		b.Set(i)
		assert.False(t, b.IsSet(i))
	}
	b.Reset()
	assert.Equal(t, 4, b.Size())
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(8, true)
	_, ok := tr.(*EmptyBitset)
	require.True(t, ok, "duplicates allowed should yield EmptyBitset")

	tr = NewTracker(8, false)
	_, ok = tr.(*Bitset)
	require.True(t, ok, "duplicates disallowed should yield Bitset")
	assert.Equal(t, 8, tr.Size())
}
