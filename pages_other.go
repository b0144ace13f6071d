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

//go:build !unix

package ktl

import (
	"math"
	"unsafe"
)

// PageAllocator on non-unix builds falls back to heap storage with the same
// element-type restrictions as the mmap-backed variant.
type PageAllocator[E any] struct{}

func NewPageAllocator[E any]() PageAllocator[E] {
	var z E
	assertf(unsafe.Sizeof(z) > 0, "ktl: page allocator needs a sized element type")
	assertf(!typeHasPointers[E](), "ktl: page allocator element type contains pointers")
	return PageAllocator[E]{}
}

func (PageAllocator[E]) NewBinding() Binding[E] { return &heapBinding[E]{} }
func (PageAllocator[E]) MinCapacity() int       { return 0 }
func (PageAllocator[E]) MaxCapacity() int       { return math.MaxInt }
func (PageAllocator[E]) Nullable() bool         { return true }
