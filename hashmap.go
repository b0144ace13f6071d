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
	"fmt"
	"strings"
)

// HashMap is an open-addressing hash map sharing the slot machinery of
// HashSet: keys live in a power-of-two table of doubly-nested nullables and
// values in a parallel binding indexed by slot. Iteration order is
// unspecified and may change across any mutation. The zero value is not
// usable; construct with NewHashMap or NewHashMapIn.
//
// A HashMap is NOT goroutine-safe.
type HashMap[K comparable, V any] struct {
	cfg          hashConfig[K]
	valAlloc     Allocator[V]
	slotLay      layout[hashSlot[K]]
	valLay       layout[V]
	slotBinding  Binding[hashSlot[K]]
	valBinding   Binding[V]
	slots        []hashSlot[K]
	values       []V
	elementCount int
	cellCount    int
}

// NewHashMap constructs a map with heap-hosted values. If initialCapacity
// is 0 the map starts with zero capacity and allocates on the first insert.
func NewHashMap[K comparable, V any](initialCapacity int, opts ...HashOption[K]) *HashMap[K, V] {
	return NewHashMapIn[K, V](HeapAllocator[V]{}, initialCapacity, opts...)
}

// NewHashMapIn constructs a map hosting its values on the given allocator.
// The slot allocator is configured through WithSlotAllocator.
func NewHashMapIn[K comparable, V any](values Allocator[V], initialCapacity int, opts ...HashOption[K]) *HashMap[K, V] {
	cfg := defaultHashConfig[K]()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &HashMap[K, V]{
		cfg:      cfg,
		valAlloc: values,
		slotLay:  makeLayout(cfg.slots, defaultHashCapacity),
		valLay:   makeLayout(values, defaultHashCapacity),
	}
	assertf(m.slotLay.hasBinaryMasking(), "ktl: slot allocator bounds do not support power-of-two capacities")
	if initialCapacity > 0 {
		m.Reserve(initialCapacity)
	}
	return m
}

// Len returns the number of key-value pairs.
func (m *HashMap[K, V]) Len() int { return m.elementCount }

// Cap returns the slot capacity.
func (m *HashMap[K, V]) Cap() int { return len(m.slots) }

// IsEmpty reports whether the map holds no pairs.
func (m *HashMap[K, V]) IsEmpty() bool { return m.elementCount == 0 }

// Get returns the value mapped to k. The second result is false when k is
// absent.
func (m *HashMap[K, V]) Get(k K) (V, bool) {
	if len(m.slots) == 0 {
		var z V
		return z, false
	}
	r := m.findSlot(k)
	if r.found < 0 {
		var z V
		return z, false
	}
	return m.values[r.found], true
}

// GetOrDefault returns the value mapped to k, or fallback when absent.
func (m *HashMap[K, V]) GetOrDefault(k K, fallback V) V {
	if v, ok := m.Get(k); ok {
		return v
	}
	return fallback
}

// ContainsKey reports whether k is in the map.
func (m *HashMap[K, V]) ContainsKey(k K) bool {
	if len(m.slots) == 0 {
		return false
	}
	return m.findSlot(k).found >= 0
}

// Put maps k to v and reports whether the pair was newly added; false means
// an existing value was updated.
func (m *HashMap[K, V]) Put(k K, v V) bool {
	m.ensureSpace()
	r := m.findSlot(k)
	if r.found >= 0 {
		m.values[r.found] = v
		return false
	}
	if r.firstFree < 0 {
		if debug {
			fmt.Printf("put(%v): saturated sweep at capacity %d, rebuilding\n", k, len(m.slots))
		}
		m.rehash(len(m.slots) + 1)
		r = m.findSlot(k)
		assertf(r.firstFree >= 0, "ktl: no free slot after rebuild")
	}
	slot := &m.slots[r.firstFree]
	wasEmpty := slotIsEmpty(slot)
	slotFill(slot, k)
	m.values[r.firstFree] = v
	m.elementCount++
	if wasEmpty {
		m.cellCount++
	}
	m.checkInvariants()
	return true
}

// Remove deletes k and reports whether it was present.
func (m *HashMap[K, V]) Remove(k K) bool {
	if len(m.slots) == 0 {
		return false
	}
	r := m.findSlot(k)
	if r.found < 0 {
		return false
	}
	slotDelete(&m.slots[r.found])
	bulkDestroy(m.values[r.found : r.found+1])
	m.elementCount--
	m.checkInvariants()
	return true
}

// Reserve grows the table so that minElements pairs can be held without
// rehashing. It never shrinks and is idempotent.
func (m *HashMap[K, V]) Reserve(minElements int) {
	if minElements <= 0 {
		return
	}
	if need := slotsForElements(minElements, m.cfg.slack); need > len(m.slots) {
		m.rehash(need)
	}
}

// Clear removes all pairs but keeps the table.
func (m *HashMap[K, V]) Clear() {
	bulkDefault(m.slots)
	bulkDestroy(m.values)
	m.elementCount, m.cellCount = 0, 0
}

// Reset removes all pairs and releases the table.
func (m *HashMap[K, V]) Reset() {
	m.elementCount, m.cellCount = 0, 0
	if m.slotBinding == nil {
		return
	}
	bulkDestroy(m.slots)
	bulkDestroy(m.values)
	m.slots, m.values = nil, nil
	m.slotBinding.Free()
	m.valBinding.Free()
	m.slotBinding, m.valBinding = nil, nil
}

// Close releases the map's resources. Idempotent.
func (m *HashMap[K, V]) Close() { m.Reset() }

// All calls yield for each pair until yield returns false. Order is
// unspecified.
func (m *HashMap[K, V]) All(yield func(k K, v V) bool) {
	slots := m.slots
	for i := range slots {
		if slotIsOccupied(&slots[i]) {
			if !yield(slotKey(&slots[i]), m.values[i]) {
				return
			}
		}
	}
}

// Keys calls yield for each key until yield returns false.
func (m *HashMap[K, V]) Keys(yield func(k K) bool) {
	m.All(func(k K, _ V) bool { return yield(k) })
}

// Values calls yield for each value until yield returns false.
func (m *HashMap[K, V]) Values(yield func(v V) bool) {
	m.All(func(_ K, v V) bool { return yield(v) })
}

// Iter returns a puller over the pairs. Order is unspecified.
func (m *HashMap[K, V]) Iter() MapIter[K, V] {
	it := MapIter[K, V]{m: m, idx: -1}
	it.Next()
	return it
}

// Clone returns a deep, independently allocated copy with identical slot
// geometry.
func (m *HashMap[K, V]) Clone() *HashMap[K, V] {
	c := &HashMap[K, V]{cfg: m.cfg, valAlloc: m.valAlloc, slotLay: m.slotLay, valLay: m.valLay}
	if m.slotBinding != nil {
		c.allocTables(len(m.slots))
		bulkCopy(c.slots, m.slots)
		bulkCopy(c.values, m.values)
		c.elementCount, c.cellCount = m.elementCount, m.cellCount
	}
	return c
}

// TakeFrom moves the contents of src into m. The binding steal requires
// both the slot and value bindings to move their items; otherwise both
// tables are migrated element-wise.
func (m *HashMap[K, V]) TakeFrom(src *HashMap[K, V]) {
	if m == src {
		return
	}
	m.Reset()
	if src.slotBinding == nil {
		return
	}
	m.cfg, m.valAlloc, m.slotLay, m.valLay = src.cfg, src.valAlloc, src.slotLay, src.valLay
	if src.slotBinding.MovesItems() && src.valBinding.MovesItems() {
		m.slotBinding, m.valBinding = src.slotBinding, src.valBinding
		m.slots, m.values = src.slots, src.values
		m.elementCount, m.cellCount = src.elementCount, src.cellCount
		src.slotBinding, src.valBinding = nil, nil
		src.slots, src.values = nil, nil
		src.elementCount, src.cellCount = 0, 0
		return
	}
	m.allocTables(len(src.slots))
	bulkMove(m.slots, src.slots)
	bulkMove(m.values, src.values)
	m.elementCount, m.cellCount = src.elementCount, src.cellCount
	src.Reset()
}

// String returns a debug representation of the slot states.
func (m *HashMap[K, V]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "len=%d cells=%d cap=%d\n", m.elementCount, m.cellCount, len(m.slots))
	for i := range m.slots {
		switch {
		case slotIsOccupied(&m.slots[i]):
			fmt.Fprintf(&sb, "  %4d: %v=%v\n", i, slotKey(&m.slots[i]), m.values[i])
		case slotIsDeleted(&m.slots[i]):
			fmt.Fprintf(&sb, "  %4d: deleted\n", i)
		}
	}
	return sb.String()
}

func (m *HashMap[K, V]) findSlot(k K) slotSearch {
	return findSlotIn(m.slots, m.cfg.hash(m.cfg.seed, k), m.cfg.probing, k)
}

func (m *HashMap[K, V]) ensureSpace() {
	if need := slotsForElements(m.elementCount+1, m.cfg.slack); need > len(m.slots) {
		m.rehash(need)
	}
}

// allocTables acquires slot and value storage of exactly capacity slots,
// default-constructing the slots to Empty.
func (m *HashMap[K, V]) allocTables(capacity int) {
	m.slotBinding = m.cfg.slots.NewBinding()
	m.slots = m.slotLay.allocate(m.slotBinding, capacity)
	assertf(isPow2(len(m.slots)), "ktl: allocator returned non-power-of-two slot capacity %d", len(m.slots))
	bulkDefault(m.slots)

	m.valBinding = m.valAlloc.NewBinding()
	m.values = m.valLay.allocate(m.valBinding, len(m.slots))
	m.values = m.values[:len(m.slots)]
	bulkDefault(m.values)
}

// rehash rebuilds both tables with capacity for at least minSlots slots,
// rounded up to a power of two. Afterwards cellCount == elementCount.
func (m *HashMap[K, V]) rehash(minSlots int) {
	var newCap int
	if m.slotBinding == nil {
		newCap = m.slotLay.initCapacity(ceilPow2(minSlots))
	} else {
		newCap = m.slotLay.nextCapacity(len(m.slots), ceilPow2(minSlots), m.cfg.growth)
	}
	assertf(isPow2(newCap), "ktl: hash capacity %d is not a power of two", newCap)

	oldSlotBinding, oldValBinding := m.slotBinding, m.valBinding
	oldSlots, oldValues := m.slots, m.values
	m.allocTables(newCap)

	if debug {
		fmt.Printf("rehash: %d -> %d slots (len=%d cells=%d)\n", len(oldSlots), len(m.slots), m.elementCount, m.cellCount)
	}

	for i := range oldSlots {
		if !slotIsOccupied(&oldSlots[i]) {
			continue
		}
		k := slotKey(&oldSlots[i])
		r := m.findSlot(k)
		assertf(r.found < 0, "ktl: duplicate key during rebuild")
		assertf(r.firstFree >= 0, "ktl: no free slot during rebuild")
		slotFill(&m.slots[r.firstFree], k)
		m.values[r.firstFree] = oldValues[i]
	}

	if oldSlotBinding != nil {
		bulkDestroy(oldSlots)
		bulkDestroy(oldValues)
		oldSlotBinding.Free()
		oldValBinding.Free()
	}
	m.cellCount = m.elementCount
	m.checkInvariants()
}

func (m *HashMap[K, V]) checkInvariants() {
	if !invariants {
		return
	}
	if len(m.slots) > 0 {
		assertf(isPow2(len(m.slots)), "ktl: capacity %d is not a power of two", len(m.slots))
	}
	assertf(len(m.slots) == len(m.values), "ktl: slot table %d and value table %d out of step", len(m.slots), len(m.values))
	occupied, cells := 0, 0
	for i := range m.slots {
		switch {
		case slotIsOccupied(&m.slots[i]):
			occupied++
			cells++
		case slotIsDeleted(&m.slots[i]):
			cells++
		}
	}
	assertf(occupied == m.elementCount, "ktl: elementCount %d != occupied slots %d", m.elementCount, occupied)
	assertf(cells == m.cellCount, "ktl: cellCount %d != cells %d", m.cellCount, cells)
	assertf(m.elementCount <= m.cellCount && m.cellCount <= len(m.slots),
		"ktl: count ordering violated: %d <= %d <= %d", m.elementCount, m.cellCount, len(m.slots))
	for i := range m.slots {
		if slotIsOccupied(&m.slots[i]) {
			k := slotKey(&m.slots[i])
			r := m.findSlot(k)
			assertf(r.found == i, "ktl: key %v found at slot %d, stored at %d", k, r.found, i)
		}
	}
}

// MapIter is a puller over a HashMap, skipping non-occupied slots.
type MapIter[K comparable, V any] struct {
	m    *HashMap[K, V]
	idx  int
	seen int
}

// Ok reports whether the puller is positioned on a pair.
func (it *MapIter[K, V]) Ok() bool { return it.idx < len(it.m.slots) }

// Next advances to the next occupied slot.
func (it *MapIter[K, V]) Next() {
	if it.idx < len(it.m.slots) && it.idx >= 0 {
		it.seen++
	}
	for it.idx++; it.idx < len(it.m.slots); it.idx++ {
		if slotIsOccupied(&it.m.slots[it.idx]) {
			return
		}
	}
}

// Key returns the current key.
func (it *MapIter[K, V]) Key() K {
	assertf(it.Ok(), "ktl: Key on a finished map iterator")
	return slotKey(&it.m.slots[it.idx])
}

// Value returns the current value.
func (it *MapIter[K, V]) Value() V {
	assertf(it.Ok(), "ktl: Value on a finished map iterator")
	return it.m.values[it.idx]
}

// ValuePtr returns a pointer to the current value, through which it may be
// updated in place.
func (it *MapIter[K, V]) ValuePtr() *V {
	assertf(it.Ok(), "ktl: ValuePtr on a finished map iterator")
	return &it.m.values[it.idx]
}

// Hint returns the exact number of pairs left, assuming no concurrent
// mutation.
func (it *MapIter[K, V]) Hint() SizeHint {
	rem := it.m.elementCount - it.seen
	if rem < 0 {
		rem = 0
	}
	return exactHint(rem)
}
