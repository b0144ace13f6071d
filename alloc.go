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

import (
	"math"
	"reflect"
)

// Binding is per-container allocator state owning at most one contiguous run
// of element storage. A container acquires storage through its binding,
// views it with Get, and releases it with Free before the binding is
// dropped. Bindings are not goroutine-safe.
//
// The contract speaks in elements rather than raw bytes: Go's garbage
// collector requires storage that holds pointerful elements to be typed.
// Byte quantities survive only in the allocator's static bounds, which the
// layout helper converts to element counts.
type Binding[E any] interface {
	// Allocate acquires storage for at least n elements and returns the
	// element capacity actually obtained (>= n), or 0 if the binding
	// refuses the request. It must not be called while an allocation is
	// active. The contents of fresh storage are unspecified.
	Allocate(n int) int

	// Reallocate grows the active allocation in place to at least n
	// elements, returning the new capacity, or 0 when in-place growth is
	// unsupported. Callers fall back to Allocate + bulk move + Free.
	Reallocate(n int) int

	// Free releases the active allocation. Element destruction is the
	// caller's responsibility and happens before Free.
	Free()

	// Get returns the active storage. The result is undefined when no
	// allocation is active.
	Get() []E

	// MovesItems reports whether handing this binding to another owner
	// transfers the storage identity. When false, the storage is intrinsic
	// to the binding and the owning container must migrate elements itself
	// on a container move.
	MovesItems() bool
}

// Allocator mints bindings and publishes its static bounds.
type Allocator[E any] interface {
	NewBinding() Binding[E]

	// MinCapacity and MaxCapacity bound a single allocation, in bytes.
	MinCapacity() int
	MaxCapacity() int

	// Nullable reports whether a binding may legitimately hold no storage.
	// Optional single-value boxes require a nullable allocator.
	Nullable() bool
}

// HeapAllocator is the default allocator: bindings are backed by Go's
// builtin make and reclaimed by the garbage collector.
type HeapAllocator[E any] struct{}

func (HeapAllocator[E]) NewBinding() Binding[E] { return &heapBinding[E]{} }
func (HeapAllocator[E]) MinCapacity() int       { return 0 }
func (HeapAllocator[E]) MaxCapacity() int       { return math.MaxInt }
func (HeapAllocator[E]) Nullable() bool         { return true }

type heapBinding[E any] struct {
	buf []E
}

func (b *heapBinding[E]) Allocate(n int) int {
	assertf(b.buf == nil, "ktl: Allocate on a heap binding with an active allocation")
	b.buf = make([]E, n)
	return n
}

func (b *heapBinding[E]) Reallocate(n int) int { return 0 }

func (b *heapBinding[E]) Free() {
	assertf(b.buf != nil, "ktl: Free on a heap binding without an active allocation")
	b.buf = nil
}

func (b *heapBinding[E]) Get() []E         { return b.buf }
func (b *heapBinding[E]) MovesItems() bool { return true }

// typeHasPointers reports whether E contains pointers anywhere in its
// representation. Allocators whose storage the garbage collector cannot see
// (arena-recycled chunks, mmap'd pages) refuse pointerful element types.
func typeHasPointers[E any]() bool {
	var z E
	return kindHasPointers(reflect.TypeOf(&z).Elem())
}

func kindHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && kindHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if kindHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
