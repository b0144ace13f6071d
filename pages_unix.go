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

//go:build unix

package ktl

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageAllocator mints bindings backed by anonymous mmap'd pages. Requests
// are rounded up to the page size, so small containers get more capacity
// than they asked for. The pages are invisible to the garbage collector, so
// pointerful element types are refused at construction.
type PageAllocator[E any] struct{}

// NewPageAllocator returns a page allocator for E.
func NewPageAllocator[E any]() PageAllocator[E] {
	var z E
	assertf(unsafe.Sizeof(z) > 0, "ktl: page allocator needs a sized element type")
	assertf(!typeHasPointers[E](), "ktl: page allocator element type contains pointers")
	return PageAllocator[E]{}
}

func (PageAllocator[E]) NewBinding() Binding[E] { return &pageBinding[E]{} }
func (PageAllocator[E]) MinCapacity() int       { return 0 }
func (PageAllocator[E]) MaxCapacity() int       { return math.MaxInt }
func (PageAllocator[E]) Nullable() bool         { return true }

type pageBinding[E any] struct {
	mem []byte
	n   int
}

func (b *pageBinding[E]) Allocate(n int) int {
	assertf(b.mem == nil, "ktl: Allocate on a page binding with an active allocation")
	var z E
	size := int(unsafe.Sizeof(z))
	page := unix.Getpagesize()
	bytes := (n*size + page - 1) / page * page
	mem, err := unix.Mmap(-1, 0, bytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0
	}
	b.mem = mem
	b.n = bytes / size
	return b.n
}

func (b *pageBinding[E]) Reallocate(n int) int { return 0 }

func (b *pageBinding[E]) Free() {
	assertf(b.mem != nil, "ktl: Free on a page binding without an active allocation")
	_ = unix.Munmap(b.mem)
	b.mem = nil
	b.n = 0
}

func (b *pageBinding[E]) Get() []E {
	if b.mem == nil {
		return nil
	}
	return unsafe.Slice((*E)(unsafe.Pointer(&b.mem[0])), b.n)
}

func (b *pageBinding[E]) MovesItems() bool { return true }
