package bitops

// Tracker records which indices of a fixed-size range have been used.
type Tracker interface {
	Set(index int)
	IsSet(index int) bool
	Reset()
	Size() int
}

// EmptyBitset tracks nothing: Set is ignored and IsSet is always false.
// It stands in for Bitset when duplicates are allowed, so the caller's
// rejection loop never rejects.
type EmptyBitset struct {
	size int
}

// NewEmptyBitset returns a tracker of the given size that never records.
func NewEmptyBitset(size int) *EmptyBitset {
	return &EmptyBitset{size: size}
}

func (b *EmptyBitset) Set(int)        {}
func (b *EmptyBitset) IsSet(int) bool { return false }
func (b *EmptyBitset) Reset()         {}
func (b *EmptyBitset) Size() int      { return b.size }

const bitsPerWord = 32

// Bitset is a fixed-size bit vector backed by 32-bit words. Index i lives
// in word i/32, bit i%32. Out-of-range indices panic.
type Bitset struct {
	words []uint32
	size  int
}

// NewBitset returns an all-clear bitset able to represent size indices.
func NewBitset(size int) *Bitset {
	return &Bitset{
		words: make([]uint32, (size+bitsPerWord-1)/bitsPerWord),
		size:  size,
	}
}

// NewTracker returns a Bitset, or an EmptyBitset when duplicates are allowed.
func NewTracker(size int, allowDuplicates bool) Tracker {
	if allowDuplicates {
		return NewEmptyBitset(size)
	}
	return NewBitset(size)
}

func (b *Bitset) Set(index int) {
	word, mask := b.locate(index)
	b.words[word] |= mask
}

func (b *Bitset) IsSet(index int) bool {
	word, mask := b.locate(index)
	return b.words[word]&mask != 0
}

func (b *Bitset) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

func (b *Bitset) Size() int { return b.size }

func (b *Bitset) locate(index int) (int, uint32) {
	if index < 0 || index >= b.size {
		panic("bitops: bitset index out of range")
	}
	return index / bitsPerWord, 1 << (uint(index) % bitsPerWord)
}
