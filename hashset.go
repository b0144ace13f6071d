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

// HashSet is an open-addressing hash set over a power-of-two slot table.
// Slot states are encoded in doubly-nested nullables (see hashSlot);
// elementCount tracks Occupied slots and cellCount tracks Occupied plus
// Deleted slots. The table rehashes when the load policy outgrows the
// capacity, after which cellCount == elementCount again. Iteration order is
// unspecified and may change across any mutation. The zero value is not
// usable; construct with NewHashSet.
//
// A HashSet is NOT goroutine-safe.
type HashSet[K comparable] struct {
	cfg          hashConfig[K]
	lay          layout[hashSlot[K]]
	binding      Binding[hashSlot[K]]
	slots        []hashSlot[K]
	elementCount int
	cellCount    int
}

// NewHashSet constructs a set. If initialCapacity is 0 the set starts with
// zero capacity and allocates on the first insert.
func NewHashSet[K comparable](initialCapacity int, opts ...HashOption[K]) *HashSet[K] {
	cfg := defaultHashConfig[K]()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &HashSet[K]{
		cfg: cfg,
		lay: makeLayout(cfg.slots, defaultHashCapacity),
	}
	assertf(s.lay.hasBinaryMasking(), "ktl: slot allocator bounds do not support power-of-two capacities")
	if initialCapacity > 0 {
		s.Reserve(initialCapacity)
	}
	return s
}

// Len returns the number of elements.
func (s *HashSet[K]) Len() int { return s.elementCount }

// Cap returns the slot capacity.
func (s *HashSet[K]) Cap() int { return len(s.slots) }

// IsEmpty reports whether the set holds no elements.
func (s *HashSet[K]) IsEmpty() bool { return s.elementCount == 0 }

// Contains reports whether k is in the set.
func (s *HashSet[K]) Contains(k K) bool {
	if len(s.slots) == 0 {
		return false
	}
	return s.findSlot(k).found >= 0
}

// Add inserts k and reports whether it was newly added.
func (s *HashSet[K]) Add(k K) bool {
	s.ensureSpace()
	r := s.findSlot(k)
	if r.found >= 0 {
		return false
	}
	if r.firstFree < 0 {
		// Saturated probe sweep: every slot is a cell. Rebuild and retry.
		if debug {
			fmt.Printf("add(%v): saturated sweep at capacity %d, rebuilding\n", k, len(s.slots))
		}
		s.rehash(len(s.slots) + 1)
		r = s.findSlot(k)
		assertf(r.firstFree >= 0, "ktl: no free slot after rebuild")
	}
	slot := &s.slots[r.firstFree]
	wasEmpty := slotIsEmpty(slot)
	slotFill(slot, k)
	s.elementCount++
	if wasEmpty {
		s.cellCount++
	}
	if debug {
		fmt.Printf("add(%v): slot %d (reclaimed=%t) len=%d cells=%d cap=%d\n",
			k, r.firstFree, !wasEmpty, s.elementCount, s.cellCount, len(s.slots))
	}
	s.checkInvariants()
	return true
}

// Remove deletes k and reports whether it was present. The slot becomes a
// tombstone, reclaimed by later insertions on the same probe chain or by
// the next rebuild.
func (s *HashSet[K]) Remove(k K) bool {
	if len(s.slots) == 0 {
		return false
	}
	r := s.findSlot(k)
	if r.found < 0 {
		return false
	}
	slotDelete(&s.slots[r.found])
	s.elementCount--
	if debug {
		fmt.Printf("remove(%v): slot %d len=%d cells=%d cap=%d\n",
			k, r.found, s.elementCount, s.cellCount, len(s.slots))
	}
	s.checkInvariants()
	return true
}

// Reserve grows the table so that minElements can be held without
// rehashing. It never shrinks and is idempotent.
func (s *HashSet[K]) Reserve(minElements int) {
	if minElements <= 0 {
		return
	}
	if need := slotsForElements(minElements, s.cfg.slack); need > len(s.slots) {
		s.rehash(need)
	}
}

// Clear removes all elements but keeps the slot table.
func (s *HashSet[K]) Clear() {
	bulkDefault(s.slots)
	s.elementCount, s.cellCount = 0, 0
}

// Reset removes all elements and releases the slot table.
func (s *HashSet[K]) Reset() {
	s.elementCount, s.cellCount = 0, 0
	if s.binding == nil {
		return
	}
	bulkDestroy(s.slots)
	s.slots = nil
	s.binding.Free()
	s.binding = nil
}

// Close releases the set's resources. Idempotent.
func (s *HashSet[K]) Close() { s.Reset() }

// All calls yield for each element until yield returns false. Order is
// unspecified.
func (s *HashSet[K]) All(yield func(k K) bool) {
	slots := s.slots
	for i := range slots {
		if slotIsOccupied(&slots[i]) {
			if !yield(slotKey(&slots[i])) {
				return
			}
		}
	}
}

// Iter returns a puller over the elements. Order is unspecified.
func (s *HashSet[K]) Iter() SetIter[K] {
	it := SetIter[K]{s: s, idx: -1}
	it.Next()
	return it
}

// Clone returns a deep, independently allocated copy with identical slot
// geometry.
func (s *HashSet[K]) Clone() *HashSet[K] {
	c := &HashSet[K]{cfg: s.cfg, lay: s.lay}
	if s.binding != nil {
		c.binding = c.cfg.slots.NewBinding()
		c.slots = c.lay.allocate(c.binding, len(s.slots))
		bulkDefault(c.slots)
		bulkCopy(c.slots, s.slots)
		c.elementCount, c.cellCount = s.elementCount, s.cellCount
	}
	return c
}

// TakeFrom moves the contents of src into s. See Array.TakeFrom for the
// binding-steal versus element-migration split.
func (s *HashSet[K]) TakeFrom(src *HashSet[K]) {
	if s == src {
		return
	}
	s.Reset()
	if src.binding == nil {
		return
	}
	if src.binding.MovesItems() {
		s.cfg, s.lay = src.cfg, src.lay
		s.binding, s.slots = src.binding, src.slots
		s.elementCount, s.cellCount = src.elementCount, src.cellCount
		src.binding, src.slots = nil, nil
		src.elementCount, src.cellCount = 0, 0
		return
	}
	// The source table keeps its own hash seed, so slot positions stay
	// valid under a verbatim migration.
	s.cfg, s.lay = src.cfg, src.lay
	s.binding = s.cfg.slots.NewBinding()
	s.slots = s.lay.allocate(s.binding, len(src.slots))
	bulkDefault(s.slots)
	bulkMove(s.slots, src.slots)
	s.elementCount, s.cellCount = src.elementCount, src.cellCount
	src.Reset()
}

// String returns a debug representation of the slot states.
func (s *HashSet[K]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "len=%d cells=%d cap=%d\n", s.elementCount, s.cellCount, len(s.slots))
	for i := range s.slots {
		switch {
		case slotIsOccupied(&s.slots[i]):
			fmt.Fprintf(&sb, "  %4d: %v\n", i, slotKey(&s.slots[i]))
		case slotIsDeleted(&s.slots[i]):
			fmt.Fprintf(&sb, "  %4d: deleted\n", i)
		}
	}
	return sb.String()
}

func (s *HashSet[K]) findSlot(k K) slotSearch {
	return findSlotIn(s.slots, s.cfg.hash(s.cfg.seed, k), s.cfg.probing, k)
}

// ensureSpace rehashes before an insert would outgrow the load policy.
func (s *HashSet[K]) ensureSpace() {
	if need := slotsForElements(s.elementCount+1, s.cfg.slack); need > len(s.slots) {
		s.rehash(need)
	}
}

// rehash rebuilds the table with capacity for at least minSlots slots,
// rounded up to a power of two. Every Occupied slot of the old table is
// relocated through a fresh probe; Deleted slots are dropped, so afterwards
// cellCount == elementCount.
func (s *HashSet[K]) rehash(minSlots int) {
	var newCap int
	if s.binding == nil {
		newCap = s.lay.initCapacity(ceilPow2(minSlots))
	} else {
		newCap = s.lay.nextCapacity(len(s.slots), ceilPow2(minSlots), s.cfg.growth)
	}
	assertf(isPow2(newCap), "ktl: hash capacity %d is not a power of two", newCap)

	nb := s.cfg.slots.NewBinding()
	ns := s.lay.allocate(nb, newCap)
	assertf(isPow2(len(ns)), "ktl: allocator returned non-power-of-two slot capacity %d", len(ns))
	bulkDefault(ns)

	if debug {
		fmt.Printf("rehash: %d -> %d slots (len=%d cells=%d)\n", len(s.slots), len(ns), s.elementCount, s.cellCount)
	}

	for i := range s.slots {
		if !slotIsOccupied(&s.slots[i]) {
			continue
		}
		k := slotKey(&s.slots[i])
		r := findSlotIn(ns, s.cfg.hash(s.cfg.seed, k), s.cfg.probing, k)
		assertf(r.found < 0, "ktl: duplicate key during rebuild")
		assertf(r.firstFree >= 0, "ktl: no free slot during rebuild")
		slotFill(&ns[r.firstFree], k)
	}

	if s.binding != nil {
		bulkDestroy(s.slots)
		s.binding.Free()
	}
	s.binding, s.slots = nb, ns
	s.cellCount = s.elementCount
	s.checkInvariants()
}

// checkInvariants recounts the slot states and re-probes every key. Enabled
// only under the invariants build tag.
func (s *HashSet[K]) checkInvariants() {
	if !invariants {
		return
	}
	if len(s.slots) > 0 {
		assertf(isPow2(len(s.slots)), "ktl: capacity %d is not a power of two", len(s.slots))
	}
	occupied, cells := 0, 0
	for i := range s.slots {
		switch {
		case slotIsOccupied(&s.slots[i]):
			occupied++
			cells++
		case slotIsDeleted(&s.slots[i]):
			cells++
		}
	}
	assertf(occupied == s.elementCount, "ktl: elementCount %d != occupied slots %d", s.elementCount, occupied)
	assertf(cells == s.cellCount, "ktl: cellCount %d != cells %d", s.cellCount, cells)
	assertf(s.elementCount <= s.cellCount && s.cellCount <= len(s.slots),
		"ktl: count ordering violated: %d <= %d <= %d", s.elementCount, s.cellCount, len(s.slots))
	for i := range s.slots {
		if slotIsOccupied(&s.slots[i]) {
			k := slotKey(&s.slots[i])
			r := s.findSlot(k)
			assertf(r.found == i, "ktl: key %v found at slot %d, stored at %d", k, r.found, i)
		}
	}
}

// SetIter is a puller over a HashSet, skipping non-occupied slots.
type SetIter[K comparable] struct {
	s    *HashSet[K]
	idx  int
	seen int
}

// Ok reports whether the puller is positioned on an element.
func (it *SetIter[K]) Ok() bool { return it.idx < len(it.s.slots) }

// Next advances to the next occupied slot.
func (it *SetIter[K]) Next() {
	if it.idx < len(it.s.slots) && it.idx >= 0 {
		it.seen++
	}
	for it.idx++; it.idx < len(it.s.slots); it.idx++ {
		if slotIsOccupied(&it.s.slots[it.idx]) {
			return
		}
	}
}

// Value returns the current element.
func (it *SetIter[K]) Value() K {
	assertf(it.Ok(), "ktl: Value on a finished set iterator")
	return slotKey(&it.s.slots[it.idx])
}

// Hint returns the exact number of elements left, assuming no concurrent
// mutation.
func (it *SetIter[K]) Hint() SizeHint {
	rem := it.s.elementCount - it.seen
	if rem < 0 {
		rem = 0
	}
	return exactHint(rem)
}
