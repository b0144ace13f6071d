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

// probeSeq walks the slots of a power-of-two table starting from a key's
// home index hash & mask. Linear probing advances one slot at a time;
// triangular probing advances by an increasing stride, which visits every
// slot of a power-of-two table exactly once per capacity steps.
type probeSeq struct {
	mask   uint64
	index  uint64
	stride uint64
	kind   ProbingKind
}

func makeProbeSeq(h, mask uint64, kind ProbingKind) probeSeq {
	return probeSeq{mask: mask, index: h & mask, kind: kind}
}

func (s *probeSeq) next() {
	if s.kind == TriangularProbing {
		s.stride++
		s.index = (s.index + s.stride) & s.mask
		return
	}
	s.index = (s.index + 1) & s.mask
}

// hashSlot is the state of one open-addressing slot, encoded in a
// doubly-nested nullable with no side metadata:
//
//	outer empty                  -> Empty     (terminates probe chains)
//	outer occupied, inner empty  -> Deleted   (tombstone, reusable)
//	outer occupied and inner too -> Occupied
type hashSlot[K comparable] = Nullable[Nullable[K]]

func slotIsEmpty[K comparable](s *hashSlot[K]) bool {
	return !s.HasValue()
}

func slotIsDeleted[K comparable](s *hashSlot[K]) bool {
	return s.HasValue() && !s.Ptr().HasValue()
}

func slotIsOccupied[K comparable](s *hashSlot[K]) bool {
	return s.HasValue() && s.Ptr().HasValue()
}

func slotKey[K comparable](s *hashSlot[K]) K {
	return s.Ptr().Value()
}

// slotFill transitions a slot (in any state) to Occupied with key k.
func slotFill[K comparable](s *hashSlot[K], k K) {
	s.Set(NullableOf(k))
}

// slotDelete transitions an Occupied slot to Deleted: the inner nullable is
// cleared while the outer stays present.
func slotDelete[K comparable](s *hashSlot[K]) {
	s.Ptr().Clear()
}

// slotSearch is the result of probing for a key: the index of the Occupied
// slot carrying it, and the first Empty-or-Deleted index seen on the chain.
// Either may be -1. If both are after a full sweep, the table is saturated
// and must be rebuilt.
type slotSearch struct {
	found     int
	firstFree int
}

// findSlotIn probes slots for key k with hash h. The scan terminates on the
// first Empty slot (an empty slot guarantees the key is not further along
// the chain) and latches the earliest Deleted slot so insertion can reclaim
// it.
func findSlotIn[K comparable](slots []hashSlot[K], h uint64, kind ProbingKind, k K) slotSearch {
	res := slotSearch{found: -1, firstFree: -1}
	capacity := len(slots)
	seq := makeProbeSeq(h, uint64(capacity-1), kind)
	for i := 0; i < capacity; i++ {
		s := &slots[seq.index]
		switch {
		case slotIsEmpty(s):
			if res.firstFree < 0 {
				res.firstFree = int(seq.index)
			}
			return res
		case slotIsDeleted(s):
			if res.firstFree < 0 {
				res.firstFree = int(seq.index)
			}
		default:
			if slotKey(s) == k {
				res.found = int(seq.index)
				return res
			}
		}
		seq.next()
	}
	return res
}
