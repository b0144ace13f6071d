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

// Arena bump-allocates bindings out of a single chunk of capacity elements.
// Free on a binding is a no-op unless the binding holds the most recent
// allocation, in which case the space is rolled back; Reallocate extends in
// place under the same condition. Reset recycles the whole chunk at once;
// the caller is responsible for ensuring no container still uses it.
//
// Because the chunk is reused without the garbage collector's knowledge,
// pointerful element types are refused at construction.
type Arena[E any] struct {
	buf []E
	off int
}

// NewArena returns an arena over a chunk of capacity elements.
func NewArena[E any](capacity int) *Arena[E] {
	assertf(capacity > 0, "ktl: arena needs a positive capacity, got %d", capacity)
	assertf(!typeHasPointers[E](), "ktl: arena element type contains pointers")
	return &Arena[E]{buf: make([]E, capacity)}
}

// Reset recycles every allocation served so far.
func (a *Arena[E]) Reset() { a.off = 0 }

// Used returns the number of elements currently served.
func (a *Arena[E]) Used() int { return a.off }

func (a *Arena[E]) NewBinding() Binding[E] { return &arenaBinding[E]{arena: a} }
func (a *Arena[E]) MinCapacity() int       { return 0 }

func (a *Arena[E]) MaxCapacity() int {
	var z E
	return len(a.buf) * int(unsafe.Sizeof(z))
}

func (a *Arena[E]) Nullable() bool { return true }

type arenaBinding[E any] struct {
	arena  *Arena[E]
	start  int
	n      int
	active bool
}

func (b *arenaBinding[E]) Allocate(n int) int {
	assertf(!b.active, "ktl: Allocate on an arena binding with an active allocation")
	a := b.arena
	if a.off+n > len(a.buf) {
		return 0
	}
	b.start, b.n, b.active = a.off, n, true
	a.off += n
	return n
}

func (b *arenaBinding[E]) Reallocate(n int) int {
	if !b.active || b.start+b.n != b.arena.off {
		return 0
	}
	if b.start+n > len(b.arena.buf) {
		return 0
	}
	b.arena.off = b.start + n
	b.n = n
	return n
}

func (b *arenaBinding[E]) Free() {
	assertf(b.active, "ktl: Free on an arena binding without an active allocation")
	// Roll back only when this is the top allocation; anything else is
	// reclaimed by Arena.Reset.
	if b.start+b.n == b.arena.off {
		b.arena.off = b.start
	}
	b.active = false
	b.n = 0
}

func (b *arenaBinding[E]) Get() []E {
	if !b.active {
		return nil
	}
	return b.arena.buf[b.start : b.start+b.n]
}

func (b *arenaBinding[E]) MovesItems() bool { return true }
