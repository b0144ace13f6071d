// Copyright 2025 The ktl-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ktl

import "math/bits"

const blockBits = 64

// BitArray is a dynamically-sized sequence of bits packed into 64-bit
// blocks hosted on an allocator binding. Capacity is tracked in blocks,
// count in bits. Bits at positions >= Len within allocated blocks are kept
// zero. The zero value is not usable; construct with NewBitArray.
//
// A BitArray is NOT goroutine-safe.
type BitArray struct {
	alloc   Allocator[uint64]
	growth  GrowthFunc
	lay     layout[uint64]
	binding Binding[uint64]
	blocks  []uint64
	bits    int
}

// NewBitArray constructs a bit array with capacity for at least initialBits
// bits. If initialBits is 0 the array starts with no allocation.
func NewBitArray(initialBits int, opts ...Option[uint64]) *BitArray {
	cfg := defaultConfig[uint64]()
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &BitArray{
		alloc:  cfg.alloc,
		growth: cfg.growth,
		lay:    makeLayout(cfg.alloc, defaultArrayCapacity),
	}
	if initialBits > 0 {
		b.Reserve(initialBits)
	}
	return b
}

// Len returns the number of bits.
func (b *BitArray) Len() int { return b.bits }

// Cap returns the capacity in bits.
func (b *BitArray) Cap() int { return len(b.blocks) * blockBits }

// IsEmpty reports whether the bit array holds no bits.
func (b *BitArray) IsEmpty() bool { return b.bits == 0 }

// BlockCount returns the number of blocks in use: ceil(Len / 64).
func (b *BitArray) BlockCount() int { return (b.bits + blockBits - 1) / blockBits }

// Add appends a bit.
func (b *BitArray) Add(v bool) {
	b.ensureBits(b.bits + 1)
	b.bits++
	b.SetBit(b.bits-1, v)
}

// GetBit returns the bit at position i.
func (b *BitArray) GetBit(i int) bool {
	assertf(i >= 0 && i < b.bits, "ktl: bit index %d out of range [0, %d)", i, b.bits)
	return b.blocks[i>>6]&(1<<uint(i&63)) != 0
}

// SetBit sets the bit at position i to v.
func (b *BitArray) SetBit(i int, v bool) {
	assertf(i >= 0 && i < b.bits, "ktl: bit index %d out of range [0, %d)", i, b.bits)
	if v {
		b.blocks[i>>6] |= 1 << uint(i&63)
	} else {
		b.blocks[i>>6] &^= 1 << uint(i&63)
	}
}

// SetAll sets every bit to v.
func (b *BitArray) SetAll(v bool) {
	n := b.BlockCount()
	if !v {
		clear(b.blocks[:n])
		return
	}
	for i := 0; i < n; i++ {
		b.blocks[i] = ^uint64(0)
	}
	if rem := uint(b.bits & 63); rem != 0 {
		b.blocks[n-1] = 1<<rem - 1
	}
}

// GetBlock returns the i-th 64-bit block.
func (b *BitArray) GetBlock(i int) uint64 {
	assertf(i >= 0 && i < b.BlockCount(), "ktl: block index %d out of range [0, %d)", i, b.BlockCount())
	return b.blocks[i]
}

// SetBlock replaces the i-th 64-bit block. Bits at positions >= Len must be
// zero or later reads through the bit API are undefined.
func (b *BitArray) SetBlock(i int, block uint64) {
	assertf(i >= 0 && i < b.BlockCount(), "ktl: block index %d out of range [0, %d)", i, b.BlockCount())
	b.blocks[i] = block
}

// CountSetBits returns the number of one bits.
func (b *BitArray) CountSetBits() int {
	n := 0
	for i := 0; i < b.BlockCount(); i++ {
		n += bits.OnesCount64(b.blocks[i])
	}
	return n
}

// InsertAtStable inserts v at bit position i, shifting all later bits up by
// one and carrying displaced top bits across block boundaries. O(blocks).
func (b *BitArray) InsertAtStable(i int, v bool) {
	assertf(i >= 0 && i <= b.bits, "ktl: bit insert index %d out of range [0, %d]", i, b.bits)
	b.ensureBits(b.bits + 1)
	b.bits++
	blockIdx, bit := i>>6, uint(i&63)
	lastBlock := (b.bits - 1) >> 6
	carry := uint64(0)
	for j := blockIdx; j <= lastBlock; j++ {
		blk := b.blocks[j]
		top := blk >> 63
		if j == blockIdx {
			low := blk & (1<<bit - 1)
			high := (blk &^ (1<<bit - 1)) << 1
			blk = low | high
			if v {
				blk |= 1 << bit
			}
		} else {
			blk = blk<<1 | carry
		}
		b.blocks[j] = blk
		carry = top
	}
}

// RemoveAtStable removes the bit at position i, shifting all later bits
// down by one and carrying bottom bits across block boundaries. O(blocks).
func (b *BitArray) RemoveAtStable(i int) {
	assertf(i >= 0 && i < b.bits, "ktl: bit index %d out of range [0, %d)", i, b.bits)
	blockIdx, bit := i>>6, uint(i&63)
	lastBlock := (b.bits - 1) >> 6
	carry := uint64(0)
	for j := lastBlock; j > blockIdx; j-- {
		blk := b.blocks[j]
		bottom := blk & 1
		b.blocks[j] = blk>>1 | carry<<63
		carry = bottom
	}
	blk := b.blocks[blockIdx]
	low := blk & (1<<bit - 1)
	high := (blk >> 1) &^ (1<<bit - 1)
	b.blocks[blockIdx] = low | high | carry<<63
	b.bits--
}

// Reserve grows the capacity to at least minBits bits. It never shrinks and
// is idempotent.
func (b *BitArray) Reserve(minBits int) {
	if minBits > 0 {
		b.ensureBits(minBits)
	}
}

// Compact shrinks the capacity to fit the current bits. An empty bit array
// releases its allocation entirely.
func (b *BitArray) Compact() {
	if b.binding == nil {
		return
	}
	if b.bits == 0 {
		b.Reset()
		return
	}
	target := b.BlockCount()
	if target < b.lay.minElems {
		target = b.lay.minElems
	}
	if target < len(b.blocks) {
		b.relocate(target)
	}
}

// Clear drops all bits but keeps the allocation.
func (b *BitArray) Clear() {
	clear(b.blocks)
	b.bits = 0
}

// Reset drops all bits and releases the allocation.
func (b *BitArray) Reset() {
	b.bits = 0
	if b.binding == nil {
		return
	}
	b.blocks = nil
	b.binding.Free()
	b.binding = nil
}

// Close releases the bit array's resources. Idempotent.
func (b *BitArray) Close() { b.Reset() }

// All calls yield for each bit in position order until yield returns false.
func (b *BitArray) All(yield func(v bool) bool) {
	for i := 0; i < b.bits; i++ {
		if !yield(b.blocks[i>>6]&(1<<uint(i&63)) != 0) {
			return
		}
	}
}

// Iter returns a puller over the bits in position order.
func (b *BitArray) Iter() BitIter {
	return BitIter{b: b}
}

// Clone returns a deep, independently allocated copy.
func (b *BitArray) Clone() *BitArray {
	c := &BitArray{alloc: b.alloc, growth: b.growth, lay: b.lay}
	if b.bits > 0 {
		used := b.BlockCount()
		c.binding = c.alloc.NewBinding()
		c.blocks = c.lay.allocate(c.binding, c.lay.initCapacity(used))
		bulkDefault(c.blocks)
		bulkCopy(c.blocks[:used], b.blocks[:used])
		c.bits = b.bits
	}
	return c
}

// TakeFrom moves the contents of src into b. See Array.TakeFrom for the
// binding-steal versus element-migration split.
func (b *BitArray) TakeFrom(src *BitArray) {
	if b == src {
		return
	}
	b.Reset()
	if src.binding == nil {
		return
	}
	if src.binding.MovesItems() {
		b.alloc, b.growth, b.lay = src.alloc, src.growth, src.lay
		b.binding, b.blocks, b.bits = src.binding, src.blocks, src.bits
		src.binding, src.blocks, src.bits = nil, nil, 0
		return
	}
	if src.bits > 0 {
		used := src.BlockCount()
		b.ensureBits(src.bits)
		bulkMove(b.blocks[:used], src.blocks[:used])
		b.bits = src.bits
	}
	src.Reset()
}

func (b *BitArray) ensureBits(minBits int) {
	minBlocks := (minBits + blockBits - 1) / blockBits
	if b.binding == nil {
		b.binding = b.alloc.NewBinding()
		b.blocks = b.lay.allocate(b.binding, b.lay.initCapacity(minBlocks))
		bulkDefault(b.blocks)
		return
	}
	if minBlocks <= len(b.blocks) {
		return
	}
	b.relocate(b.lay.nextCapacity(len(b.blocks), minBlocks, b.growth))
}

func (b *BitArray) relocate(newBlocks int) {
	used := b.BlockCount()
	if newBlocks > len(b.blocks) {
		if got := b.binding.Reallocate(newBlocks); got >= newBlocks {
			b.blocks = b.binding.Get()[:got]
			clear(b.blocks[used:])
			return
		}
	}
	nb := b.alloc.NewBinding()
	ni := b.lay.allocate(nb, newBlocks)
	bulkDefault(ni)
	bulkMove(ni[:used], b.blocks[:used])
	b.binding.Free()
	b.binding, b.blocks = nb, ni
}

// BitIter is a puller over a BitArray.
type BitIter struct {
	b   *BitArray
	idx int
}

// Ok reports whether the puller is positioned on a bit.
func (it *BitIter) Ok() bool { return it.idx < it.b.bits }

// Next advances to the next bit.
func (it *BitIter) Next() { it.idx++ }

// Value returns the current bit.
func (it *BitIter) Value() bool {
	assertf(it.Ok(), "ktl: Value on a finished bit iterator")
	return it.b.GetBit(it.idx)
}

// Hint returns the exact number of bits left.
func (it *BitIter) Hint() SizeHint {
	rem := it.b.bits - it.idx
	if rem < 0 {
		rem = 0
	}
	return exactHint(rem)
}
