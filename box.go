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

// Box is a single-element owning container over a nullable allocator: the
// binding holds storage only while a value is present. Copying is
// deliberately absent; ownership moves with TakeFrom. The zero value is not
// usable; construct with NewBox.
//
// A Box is NOT goroutine-safe.
type Box[T any] struct {
	alloc   Allocator[T]
	binding Binding[T]
	cell    []T
}

// NewBox constructs an empty box. The allocator must be nullable: a box
// legitimately holds no storage while empty.
func NewBox[T any](opts ...Option[T]) *Box[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	assertf(cfg.alloc.Nullable(), "ktl: box requires a nullable allocator")
	return &Box[T]{alloc: cfg.alloc}
}

// HasValue reports whether the box holds a value.
func (b *Box[T]) HasValue() bool { return b.binding != nil }

// IsEmpty reports whether the box holds no value.
func (b *Box[T]) IsEmpty() bool { return b.binding == nil }

// Get returns the held value. It is a fatal error to call Get on an empty
// box.
func (b *Box[T]) Get() T {
	assertf(b.binding != nil, "ktl: Get on an empty box")
	return b.cell[0]
}

// TryGet returns the held value, or false when the box is empty.
func (b *Box[T]) TryGet() (T, bool) {
	if b.binding == nil {
		var z T
		return z, false
	}
	return b.cell[0], true
}

// Ptr returns a pointer to the held value. It is a fatal error to call Ptr
// on an empty box.
func (b *Box[T]) Ptr() *T {
	assertf(b.binding != nil, "ktl: Ptr on an empty box")
	return &b.cell[0]
}

// Emplace constructs v in the box, destroying any current value.
func (b *Box[T]) Emplace(v T) {
	if b.binding == nil {
		b.binding = b.alloc.NewBinding()
		got := b.binding.Allocate(1)
		assertf(got >= 1, "ktl: allocator refused a single element")
		b.cell = b.binding.Get()[:1]
	}
	b.cell[0] = v
}

// Reset destroys the held value, if any, and releases the storage.
func (b *Box[T]) Reset() {
	if b.binding == nil {
		return
	}
	bulkDestroy(b.cell)
	b.cell = nil
	b.binding.Free()
	b.binding = nil
}

// Close releases the box's resources. Idempotent.
func (b *Box[T]) Close() { b.Reset() }

// TakeFrom moves the value of src into b, replacing b's value. See
// Array.TakeFrom for the binding-steal versus element-migration split.
func (b *Box[T]) TakeFrom(src *Box[T]) {
	if b == src {
		return
	}
	b.Reset()
	if src.binding == nil {
		return
	}
	if src.binding.MovesItems() {
		b.alloc = src.alloc
		b.binding, b.cell = src.binding, src.cell
		src.binding, src.cell = nil, nil
		return
	}
	b.Emplace(src.cell[0])
	src.Reset()
}

// RcBox is a Box guarded by a non-atomic borrow counter in the manner of a
// single-threaded borrow checker: any number of concurrent read handles, or
// exactly one write handle. Emplace and Reset are fatal while handles are
// outstanding. The counter does not make RcBox goroutine-safe; it catches
// re-entrant misuse within one goroutine.
type RcBox[T any] struct {
	box Box[T]
	// refs is 0 when idle, n > 0 with n read handles out, -1 with the
	// write handle out.
	refs int
}

// NewRcBox constructs an empty reference-counted box.
func NewRcBox[T any](opts ...Option[T]) *RcBox[T] {
	b := NewBox[T](opts...)
	return &RcBox[T]{box: *b}
}

// HasValue reports whether the box holds a value.
func (rc *RcBox[T]) HasValue() bool { return rc.box.HasValue() }

// IsEmpty reports whether the box holds no value.
func (rc *RcBox[T]) IsEmpty() bool { return rc.box.IsEmpty() }

// Emplace constructs v in the box. Fatal while any handle is outstanding.
func (rc *RcBox[T]) Emplace(v T) {
	assertf(rc.refs == 0, "ktl: Emplace with outstanding handles (refs=%d)", rc.refs)
	rc.box.Emplace(v)
}

// Reset destroys the held value. Fatal while any handle is outstanding.
func (rc *RcBox[T]) Reset() {
	assertf(rc.refs == 0, "ktl: Reset with outstanding handles (refs=%d)", rc.refs)
	rc.box.Reset()
}

// Close releases the box's resources. Fatal while any handle is
// outstanding.
func (rc *RcBox[T]) Close() { rc.Reset() }

// TryRead issues a read handle. It fails when the box is empty or the write
// handle is out.
func (rc *RcBox[T]) TryRead() (*ReadHandle[T], bool) {
	if rc.box.IsEmpty() || rc.refs < 0 {
		return nil, false
	}
	rc.refs++
	return &ReadHandle[T]{rc: rc}, true
}

// TryWrite issues the write handle. It fails when the box is empty, any
// read handle is out, or the write handle is already out.
func (rc *RcBox[T]) TryWrite() (*WriteHandle[T], bool) {
	if rc.box.IsEmpty() || rc.refs != 0 {
		return nil, false
	}
	rc.refs = -1
	return &WriteHandle[T]{rc: rc}, true
}

// ReadHandle is a scoped shared borrow of an RcBox value.
type ReadHandle[T any] struct {
	rc   *RcBox[T]
	done bool
}

// Value returns the borrowed value.
func (h *ReadHandle[T]) Value() T {
	assertf(!h.done, "ktl: Value on a closed read handle")
	return h.rc.box.Get()
}

// Close returns the borrow. Idempotent.
func (h *ReadHandle[T]) Close() {
	if h.done {
		return
	}
	h.done = true
	h.rc.refs--
}

// WriteHandle is a scoped exclusive borrow of an RcBox value.
type WriteHandle[T any] struct {
	rc   *RcBox[T]
	done bool
}

// Value returns the borrowed value.
func (h *WriteHandle[T]) Value() T {
	assertf(!h.done, "ktl: Value on a closed write handle")
	return h.rc.box.Get()
}

// Ptr returns a pointer through which the value may be replaced.
func (h *WriteHandle[T]) Ptr() *T {
	assertf(!h.done, "ktl: Ptr on a closed write handle")
	return h.rc.box.Ptr()
}

// Close returns the borrow. Idempotent.
func (h *WriteHandle[T]) Close() {
	if h.done {
		return
	}
	h.done = true
	h.rc.refs = 0
}
