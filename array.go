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

// Array is a dynamically-sized array of T hosted on an allocator binding.
// Storage is acquired lazily on the first insertion (or Reserve) and never
// shrinks except through Compact and Reset. The zero value is not usable;
// construct with NewArray.
//
// An Array is NOT goroutine-safe.
type Array[T any] struct {
	alloc   Allocator[T]
	growth  GrowthFunc
	lay     layout[T]
	binding Binding[T]
	items   []T
	count   int
}

// NewArray constructs an array. If initialCapacity is 0 the array starts
// with no allocation and grows on the first insert.
func NewArray[T any](initialCapacity int, opts ...Option[T]) *Array[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	a := &Array[T]{
		alloc:  cfg.alloc,
		growth: cfg.growth,
		lay:    makeLayout(cfg.alloc, defaultArrayCapacity),
	}
	if initialCapacity > 0 {
		a.Reserve(initialCapacity)
	}
	return a
}

// Len returns the number of elements.
func (a *Array[T]) Len() int { return a.count }

// Cap returns the current capacity.
func (a *Array[T]) Cap() int { return len(a.items) }

// IsEmpty reports whether the array holds no elements.
func (a *Array[T]) IsEmpty() bool { return a.count == 0 }

// Get returns the element at index i.
func (a *Array[T]) Get(i int) T {
	assertf(i >= 0 && i < a.count, "ktl: array index %d out of range [0, %d)", i, a.count)
	return a.items[i]
}

// Set replaces the element at index i.
func (a *Array[T]) Set(i int, v T) {
	assertf(i >= 0 && i < a.count, "ktl: array index %d out of range [0, %d)", i, a.count)
	a.items[i] = v
}

// At returns a pointer to the element at index i. The pointer is invalidated
// by any operation that grows or compacts the array.
func (a *Array[T]) At(i int) *T {
	assertf(i >= 0 && i < a.count, "ktl: array index %d out of range [0, %d)", i, a.count)
	return &a.items[i]
}

// Add appends v.
func (a *Array[T]) Add(v T) {
	a.ensureCapacity(a.count + 1)
	a.items[a.count] = v
	a.count++
}

// InsertAt inserts v at index i, shifting later elements up. Insertion at
// i == Len appends.
func (a *Array[T]) InsertAt(i int, v T) {
	assertf(i >= 0 && i <= a.count, "ktl: array insert index %d out of range [0, %d]", i, a.count)
	a.ensureCapacity(a.count + 1)
	copy(a.items[i+1:a.count+1], a.items[i:a.count])
	a.items[i] = v
	a.count++
}

// RemoveAt removes the element at index i by swapping the last element into
// its place. Order is not preserved.
func (a *Array[T]) RemoveAt(i int) {
	assertf(i >= 0 && i < a.count, "ktl: array index %d out of range [0, %d)", i, a.count)
	a.count--
	a.items[i] = a.items[a.count]
	bulkDestroy(a.items[a.count : a.count+1])
}

// RemoveAtStable removes the element at index i, shifting later elements
// down. Order is preserved.
func (a *Array[T]) RemoveAtStable(i int) {
	assertf(i >= 0 && i < a.count, "ktl: array index %d out of range [0, %d)", i, a.count)
	copy(a.items[i:], a.items[i+1:a.count])
	a.count--
	bulkDestroy(a.items[a.count : a.count+1])
}

// Reserve grows the capacity to at least minCapacity. It never shrinks and
// is idempotent.
func (a *Array[T]) Reserve(minCapacity int) {
	if minCapacity > 0 {
		a.ensureCapacity(minCapacity)
	}
}

// Compact shrinks the capacity to fit the current elements. An empty array
// releases its allocation entirely.
func (a *Array[T]) Compact() {
	if a.binding == nil {
		return
	}
	if a.count == 0 {
		a.Reset()
		return
	}
	target := a.count
	if target < a.lay.minElems {
		target = a.lay.minElems
	}
	if target < len(a.items) {
		a.relocate(target)
	}
}

// Clear destroys all elements but keeps the allocation.
func (a *Array[T]) Clear() {
	bulkDestroy(a.items[:a.count])
	a.count = 0
}

// Reset destroys all elements and releases the allocation.
func (a *Array[T]) Reset() {
	if a.binding == nil {
		a.count = 0
		return
	}
	bulkDestroy(a.items[:a.count])
	a.count = 0
	a.items = nil
	a.binding.Free()
	a.binding = nil
}

// Close releases the array's resources. The array must not be used
// afterwards, though Close itself is idempotent.
func (a *Array[T]) Close() { a.Reset() }

// All calls yield for each element in index order until yield returns false.
func (a *Array[T]) All(yield func(v T) bool) {
	items := a.items[:a.count]
	for i := range items {
		if !yield(items[i]) {
			return
		}
	}
}

// Iter returns a puller over the elements in index order. The puller is
// invalidated by any mutation of the array.
func (a *Array[T]) Iter() ArrayIter[T] {
	return ArrayIter[T]{a: a}
}

// Clone returns a deep, independently allocated copy using the same
// allocator and growth policy.
func (a *Array[T]) Clone() *Array[T] {
	c := &Array[T]{alloc: a.alloc, growth: a.growth, lay: a.lay}
	if a.count > 0 {
		c.binding = c.alloc.NewBinding()
		c.items = c.lay.allocate(c.binding, c.lay.initCapacity(a.count))
		bulkCopy(c.items[:a.count], a.items[:a.count])
		c.count = a.count
	}
	return c
}

// TakeFrom moves the contents of src into a, replacing a's contents. When
// src's binding moves its items the transfer is a pointer swap and a adopts
// src's allocator; otherwise the elements are migrated into a freshly
// allocated binding of a's own allocator and src is drained.
func (a *Array[T]) TakeFrom(src *Array[T]) {
	if a == src {
		return
	}
	a.Reset()
	if src.binding == nil {
		return
	}
	if src.binding.MovesItems() {
		a.alloc, a.growth, a.lay = src.alloc, src.growth, src.lay
		a.binding, a.items, a.count = src.binding, src.items, src.count
		src.binding, src.items, src.count = nil, nil, 0
		return
	}
	if src.count > 0 {
		a.ensureCapacity(src.count)
		bulkMove(a.items[:src.count], src.items[:src.count])
		a.count = src.count
	}
	src.Reset()
}

func (a *Array[T]) ensureCapacity(minReq int) {
	if a.binding == nil {
		a.binding = a.alloc.NewBinding()
		a.items = a.lay.allocate(a.binding, a.lay.initCapacity(minReq))
		return
	}
	if minReq <= len(a.items) {
		return
	}
	a.relocate(a.lay.nextCapacity(len(a.items), minReq, a.growth))
}

// relocate moves the elements into a new allocation of exactly newCap
// elements, trying in-place growth first.
func (a *Array[T]) relocate(newCap int) {
	if newCap > len(a.items) {
		if got := a.binding.Reallocate(newCap); got >= newCap {
			a.items = a.binding.Get()[:got]
			return
		}
	}
	nb := a.alloc.NewBinding()
	ni := a.lay.allocate(nb, newCap)
	bulkMove(ni[:a.count], a.items[:a.count])
	bulkDestroy(a.items[:a.count])
	a.binding.Free()
	a.binding, a.items = nb, ni
}

// ArrayIter is a puller over an Array.
type ArrayIter[T any] struct {
	a   *Array[T]
	idx int
}

// Ok reports whether the puller is positioned on an element.
func (it *ArrayIter[T]) Ok() bool { return it.idx < it.a.count }

// Next advances to the next element.
func (it *ArrayIter[T]) Next() { it.idx++ }

// Value returns the current element.
func (it *ArrayIter[T]) Value() T {
	assertf(it.Ok(), "ktl: Value on a finished array iterator")
	return it.a.items[it.idx]
}

// Ptr returns a pointer to the current element.
func (it *ArrayIter[T]) Ptr() *T {
	assertf(it.Ok(), "ktl: Ptr on a finished array iterator")
	return &it.a.items[it.idx]
}

// Hint returns the exact number of elements left.
func (it *ArrayIter[T]) Hint() SizeHint {
	rem := it.a.count - it.idx
	if rem < 0 {
		rem = 0
	}
	return exactHint(rem)
}
