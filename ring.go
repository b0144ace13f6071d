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

// Ring is a double-ended circular buffer hosted on an allocator binding. A
// logical head index plus a count define the occupied region; the capacity
// is not constrained to powers of two. On growth the elements are
// linearized into the new storage in logical order. The zero value is not
// usable; construct with NewRing.
//
// A Ring is NOT goroutine-safe.
type Ring[T any] struct {
	alloc   Allocator[T]
	growth  GrowthFunc
	lay     layout[T]
	binding Binding[T]
	items   []T
	head    int
	count   int
}

// NewRing constructs a ring. If initialCapacity is 0 the ring starts with
// no allocation and grows on the first push.
func NewRing[T any](initialCapacity int, opts ...Option[T]) *Ring[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Ring[T]{
		alloc:  cfg.alloc,
		growth: cfg.growth,
		lay:    makeLayout(cfg.alloc, defaultRingCapacity),
	}
	if initialCapacity > 0 {
		r.Reserve(initialCapacity)
	}
	return r
}

// Len returns the number of elements.
func (r *Ring[T]) Len() int { return r.count }

// Cap returns the current capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// IsEmpty reports whether the ring holds no elements.
func (r *Ring[T]) IsEmpty() bool { return r.count == 0 }

// PushBack appends v at the back.
func (r *Ring[T]) PushBack(v T) {
	r.ensureCapacity(r.count + 1)
	r.items[(r.head+r.count)%len(r.items)] = v
	r.count++
}

// PushFront prepends v at the front.
func (r *Ring[T]) PushFront(v T) {
	r.ensureCapacity(r.count + 1)
	r.head = (r.head - 1 + len(r.items)) % len(r.items)
	r.items[r.head] = v
	r.count++
}

// PopFront removes and returns the front element. The second result is
// false when the ring is empty.
func (r *Ring[T]) PopFront() (T, bool) {
	var z T
	if r.count == 0 {
		return z, false
	}
	v := r.items[r.head]
	r.items[r.head] = z
	r.head = (r.head + 1) % len(r.items)
	r.count--
	return v, true
}

// PopBack removes and returns the back element. The second result is false
// when the ring is empty.
func (r *Ring[T]) PopBack() (T, bool) {
	var z T
	if r.count == 0 {
		return z, false
	}
	i := (r.head + r.count - 1) % len(r.items)
	v := r.items[i]
	r.items[i] = z
	r.count--
	return v, true
}

// PeekFront returns the front element without removing it.
func (r *Ring[T]) PeekFront() (T, bool) {
	if r.count == 0 {
		var z T
		return z, false
	}
	return r.items[r.head], true
}

// PeekBack returns the back element without removing it.
func (r *Ring[T]) PeekBack() (T, bool) {
	if r.count == 0 {
		var z T
		return z, false
	}
	return r.items[(r.head+r.count-1)%len(r.items)], true
}

// Reserve grows the capacity to at least minCapacity. It never shrinks and
// is idempotent.
func (r *Ring[T]) Reserve(minCapacity int) {
	if minCapacity > 0 {
		r.ensureCapacity(minCapacity)
	}
}

// Clear destroys all elements but keeps the allocation.
func (r *Ring[T]) Clear() {
	bulkDestroy(r.items)
	r.head, r.count = 0, 0
}

// Reset destroys all elements and releases the allocation.
func (r *Ring[T]) Reset() {
	r.head, r.count = 0, 0
	if r.binding == nil {
		return
	}
	bulkDestroy(r.items)
	r.items = nil
	r.binding.Free()
	r.binding = nil
}

// Close releases the ring's resources. Idempotent.
func (r *Ring[T]) Close() { r.Reset() }

// All calls yield for each element from front to back until yield returns
// false.
func (r *Ring[T]) All(yield func(v T) bool) {
	for i := 0; i < r.count; i++ {
		if !yield(r.items[(r.head+i)%len(r.items)]) {
			return
		}
	}
}

// Iter returns a puller over the elements from front to back.
func (r *Ring[T]) Iter() RingIter[T] {
	return RingIter[T]{r: r}
}

// Clone returns a deep, independently allocated copy. The clone is
// linearized: its head starts at slot zero.
func (r *Ring[T]) Clone() *Ring[T] {
	c := &Ring[T]{alloc: r.alloc, growth: r.growth, lay: r.lay}
	if r.count > 0 {
		c.binding = c.alloc.NewBinding()
		c.items = c.lay.allocate(c.binding, c.lay.initCapacity(r.count))
		r.copyLinearized(c.items)
		c.count = r.count
	}
	return c
}

// TakeFrom moves the contents of src into r. See Array.TakeFrom for the
// binding-steal versus element-migration split.
func (r *Ring[T]) TakeFrom(src *Ring[T]) {
	if r == src {
		return
	}
	r.Reset()
	if src.binding == nil {
		return
	}
	if src.binding.MovesItems() {
		r.alloc, r.growth, r.lay = src.alloc, src.growth, src.lay
		r.binding, r.items = src.binding, src.items
		r.head, r.count = src.head, src.count
		src.binding, src.items = nil, nil
		src.head, src.count = 0, 0
		return
	}
	if src.count > 0 {
		r.ensureCapacity(src.count)
		src.copyLinearized(r.items)
		r.count = src.count
	}
	src.Reset()
}

// copyLinearized copies the occupied region into dst in logical order.
func (r *Ring[T]) copyLinearized(dst []T) {
	tail := r.head + r.count
	if tail <= len(r.items) {
		bulkCopy(dst, r.items[r.head:tail])
		return
	}
	n := copy(dst, r.items[r.head:])
	bulkCopy(dst[n:r.count], r.items[:tail-len(r.items)])
}

func (r *Ring[T]) ensureCapacity(minReq int) {
	if r.binding == nil {
		r.binding = r.alloc.NewBinding()
		r.items = r.lay.allocate(r.binding, r.lay.initCapacity(minReq))
		return
	}
	if minReq <= len(r.items) {
		return
	}
	newCap := r.lay.nextCapacity(len(r.items), minReq, r.growth)
	nb := r.alloc.NewBinding()
	ni := r.lay.allocate(nb, newCap)
	r.copyLinearized(ni)
	bulkDestroy(r.items)
	r.binding.Free()
	r.binding, r.items, r.head = nb, ni, 0
}

// RingIter is a puller over a Ring.
type RingIter[T any] struct {
	r   *Ring[T]
	idx int
}

// Ok reports whether the puller is positioned on an element.
func (it *RingIter[T]) Ok() bool { return it.idx < it.r.count }

// Next advances to the next element.
func (it *RingIter[T]) Next() { it.idx++ }

// Value returns the current element.
func (it *RingIter[T]) Value() T {
	assertf(it.Ok(), "ktl: Value on a finished ring iterator")
	return it.r.items[(it.r.head+it.idx)%len(it.r.items)]
}

// Hint returns the exact number of elements left.
func (it *RingIter[T]) Hint() SizeHint {
	rem := it.r.count - it.idx
	if rem < 0 {
		rem = 0
	}
	return exactHint(rem)
}
