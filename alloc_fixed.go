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

import "unsafe"

// FixedAllocator mints bindings over a buffer of exactly elems elements. The
// buffer is created together with the binding and is intrinsic to it, so
// MovesItems is false: containers moved between owners migrate their
// elements instead of swapping pointers. An Allocate request for any other
// capacity is refused with 0, which the layout helper escalates to a fatal
// error.
type FixedAllocator[E any] struct {
	elems int
}

// NewFixedAllocator returns an allocator whose bindings hold exactly elems
// elements.
func NewFixedAllocator[E any](elems int) FixedAllocator[E] {
	assertf(elems > 0, "ktl: fixed allocator needs a positive capacity, got %d", elems)
	return FixedAllocator[E]{elems: elems}
}

func (a FixedAllocator[E]) NewBinding() Binding[E] {
	return &fixedBinding[E]{buf: make([]E, a.elems)}
}

func (a FixedAllocator[E]) MinCapacity() int {
	var z E
	return a.elems * int(unsafe.Sizeof(z))
}

func (a FixedAllocator[E]) MaxCapacity() int { return a.MinCapacity() }
func (a FixedAllocator[E]) Nullable() bool   { return false }

type fixedBinding[E any] struct {
	buf    []E
	active bool
}

func (b *fixedBinding[E]) Allocate(n int) int {
	assertf(!b.active, "ktl: Allocate on a fixed binding with an active allocation")
	if n != len(b.buf) {
		return 0
	}
	b.active = true
	return len(b.buf)
}

func (b *fixedBinding[E]) Reallocate(n int) int { return 0 }

func (b *fixedBinding[E]) Free() {
	assertf(b.active, "ktl: Free on a fixed binding without an active allocation")
	clear(b.buf)
	b.active = false
}

func (b *fixedBinding[E]) Get() []E {
	if !b.active {
		return nil
	}
	return b.buf
}

func (b *fixedBinding[E]) MovesItems() bool { return false }
