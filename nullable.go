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

// maxOrdinaryTombstoneDepth is the number of distinct poison states a
// Nullable over an ordinary (non-nullable) element can encode in its int8
// discriminant. Values 1..127; 0 is plain empty and -1 is carrying.
const maxOrdinaryTombstoneDepth = 127

// tombstoneCarrier is the trait implemented by types that can encode
// in-band "poison" states distinguishable from any real value. Level 0 means
// the value is genuine; level k >= 1 is the k-th poison state. *Nullable[T]
// implements it, which is what lets nullables nest without growing.
type tombstoneCarrier interface {
	tombstoneLevel() int
	setTombstoneLevel(level int)
	tombstoneCapacity() int
}

// MaxTombstoneDepth returns the number of distinct in-band poison states T
// can encode: 0 for ordinary types, 127 for a nullable over an ordinary
// type, and one less than the element's depth for a nullable over a
// tombstone-aware element.
func MaxTombstoneDepth[T any]() int {
	var z T
	if c, ok := any(&z).(tombstoneCarrier); ok {
		return c.tombstoneCapacity()
	}
	return 0
}

// Nullable is an optional value: either empty or carrying a T.
//
// Internally a Nullable also has a tombstone level. Level 0 covers the two
// ordinary states (empty or carrying, told apart by the discriminant); level
// k >= 1 marks the value as the k-th poison state of an enclosing nullable
// and never escapes through the public API. When T is an ordinary type the
// discriminant byte holds the state directly: -1 carrying, 0 empty, k >= 1
// poison. When T is itself tombstone-aware the discriminant is unused and
// the state lives entirely in the element's ladder: element level 0 means
// this nullable is carrying (a genuine T, possibly an empty nullable),
// element level 1 means this nullable is empty, and element level k+1 means
// this nullable is poison state k. Entering a tombstone adds one, leaving
// subtracts one, so Nullable[Nullable[K]] distinguishes empty / carrying an
// empty K-nullable / carrying an occupied K in the footprint of Nullable[K].
//
// The zero value of a Nullable over an ordinary element is empty. A nested
// nullable (Nullable[Nullable[...]]) must be created through EmptyNullable
// or NullableOf; its zero value is NOT empty, it is carrying an empty inner
// nullable. Container slot storage is normalized through bulk
// default-construction, which resets every slot to genuinely empty.
type Nullable[T any] struct {
	value T
	disc  int8
}

// EmptyNullable returns an empty Nullable[T], at any nesting depth.
func EmptyNullable[T any]() Nullable[T] {
	var n Nullable[T]
	n.reset()
	return n
}

// NullableOf returns a Nullable carrying v.
func NullableOf[T any](v T) Nullable[T] {
	var n Nullable[T]
	n.Set(v)
	return n
}

func (n *Nullable[T]) carrier() (tombstoneCarrier, bool) {
	c, ok := any(&n.value).(tombstoneCarrier)
	return c, ok
}

// reset makes the nullable plain empty, releasing any carried value.
func (n *Nullable[T]) reset() {
	if c, ok := n.carrier(); ok {
		c.setTombstoneLevel(1)
		n.disc = 0
		return
	}
	var z T
	n.value = z
	n.disc = 0
}

// HasValue reports whether the nullable is carrying a value.
func (n *Nullable[T]) HasValue() bool {
	if c, ok := n.carrier(); ok {
		return c.tombstoneLevel() == 0
	}
	return n.disc == -1
}

// Value returns the carried value. It is a fatal error to call Value on an
// empty nullable.
func (n *Nullable[T]) Value() T {
	assertf(n.HasValue(), "ktl: Value on an empty nullable")
	return n.value
}

// ValueOr returns the carried value, or fallback when empty.
func (n *Nullable[T]) ValueOr(fallback T) T {
	if n.HasValue() {
		return n.value
	}
	return fallback
}

// Ptr returns a pointer to the carried value. It is a fatal error to call
// Ptr on an empty nullable.
func (n *Nullable[T]) Ptr() *T {
	assertf(n.HasValue(), "ktl: Ptr on an empty nullable")
	return &n.value
}

// Set replaces the current state with a carried copy of v.
func (n *Nullable[T]) Set(v T) {
	n.value = v
	if _, ok := n.carrier(); ok {
		n.disc = 0
		return
	}
	n.disc = -1
}

// Emplace is Set under the name used by the placement-construction API of
// the other containers. Any current value is released first.
func (n *Nullable[T]) Emplace(v T) {
	n.Set(v)
}

// Clear makes the nullable empty, releasing any carried value.
func (n *Nullable[T]) Clear() {
	n.reset()
}

// SetIfNull sets v only when the nullable is empty and reports whether it
// did.
func (n *Nullable[T]) SetIfNull(v T) bool {
	if n.HasValue() {
		return false
	}
	n.Set(v)
	return true
}

// tombstoneLevel implements tombstoneCarrier: how deep a poison state this
// nullable currently is when viewed as the element of an enclosing nullable.
// Genuine values (carrying or plain empty) are level 0.
func (n *Nullable[T]) tombstoneLevel() int {
	if c, ok := n.carrier(); ok {
		if inner := c.tombstoneLevel(); inner > 1 {
			return inner - 1
		}
		return 0
	}
	if n.disc >= 1 {
		return int(n.disc)
	}
	return 0
}

// setTombstoneLevel implements tombstoneCarrier. Level 0 yields a plain
// empty nullable (the genuine state an enclosing nullable leaves behind when
// it un-poisons its element); level k >= 1 poisons. The payload is zeroed on
// every transition so dead values do not pin heap objects.
func (n *Nullable[T]) setTombstoneLevel(level int) {
	if c, ok := n.carrier(); ok {
		c.setTombstoneLevel(level + 1)
		n.disc = 0
		return
	}
	assertf(level <= maxOrdinaryTombstoneDepth, "ktl: tombstone level %d exceeds depth %d", level, maxOrdinaryTombstoneDepth)
	var z T
	n.value = z
	n.disc = int8(level)
}

// tombstoneCapacity implements tombstoneCarrier.
func (n *Nullable[T]) tombstoneCapacity() int {
	if c, ok := n.carrier(); ok {
		return c.tombstoneCapacity() - 1
	}
	return maxOrdinaryTombstoneDepth
}
