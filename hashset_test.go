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
	"hash/maphash"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func (s *HashSet[K]) toBuiltinSet() map[K]struct{} {
	r := make(map[K]struct{})
	s.All(func(k K) bool {
		r[k] = struct{}{}
		return true
	})
	return r
}

func probings(t *testing.T, f func(t *testing.T, p ProbingKind)) {
	t.Run("probing=linear", func(t *testing.T) { f(t, LinearProbing) })
	t.Run("probing=triangular", func(t *testing.T) { f(t, TriangularProbing) })
}

func TestHashSetBasic(t *testing.T) {
	probings(t, func(t *testing.T, p ProbingKind) {
		s := NewHashSet[int32](0, WithProbing[int32](p))
		defer s.Close()

		for k := int32(1); k <= 100; k++ {
			require.True(t, s.Add(k))
		}
		require.Equal(t, 100, s.Len())
		for k := int32(1); k <= 100; k++ {
			require.True(t, s.Contains(k), "key %d", k)
			require.False(t, s.Add(k), "re-adding %d", k)
		}
		require.False(t, s.Contains(0))

		for k := int32(2); k <= 100; k += 2 {
			require.True(t, s.Remove(k))
		}
		require.Equal(t, 50, s.Len())
		for k := int32(1); k <= 100; k++ {
			require.Equal(t, k%2 == 1, s.Contains(k), "key %d", k)
		}
		require.False(t, s.Remove(2))

		for k := int32(2); k <= 100; k += 2 {
			require.True(t, s.Add(k))
		}
		require.Equal(t, 100, s.Len())
		for k := int32(1); k <= 100; k++ {
			require.True(t, s.Contains(k), "key %d", k)
		}
	})
}

func TestHashSetPow2Capacity(t *testing.T) {
	s := NewHashSet[int](0)
	require.Equal(t, 0, s.Cap())
	for i := 0; i < 1000; i++ {
		s.Add(i)
		require.True(t, s.Cap() == 0 || isPow2(s.Cap()), "cap %d after %d adds", s.Cap(), i+1)
	}
}

// TestHashSetRehashGrowth fills the table to the load threshold and checks
// the rebuild doubles the capacity and drops all tombstones.
func TestHashSetRehashGrowth(t *testing.T) {
	s := NewHashSet[int](1)
	require.Equal(t, 64, s.Cap())

	// slotsForElements(n+1, 3) stays within 64 slots until n+1 == 48.
	for k := 0; k < 47; k++ {
		s.Add(k)
	}
	require.Equal(t, 64, s.Cap())

	// A few removals leave tombstones behind.
	s.Remove(0)
	s.Remove(1)
	require.Equal(t, 47, s.cellCount)
	require.Equal(t, 45, s.elementCount)
	s.Add(0)
	s.Add(1)

	s.Add(47)
	require.Equal(t, 128, s.Cap())
	require.Equal(t, 48, s.Len())
	require.Equal(t, s.elementCount, s.cellCount, "rebuild must drop tombstones")
	for k := 0; k <= 47; k++ {
		require.True(t, s.Contains(k), "key %d after rehash", k)
	}
}

func TestHashSetTombstoneReclaim(t *testing.T) {
	// A constant hash forces every key onto one probe chain.
	s := NewHashSet[int](1, WithHash[int](func(maphash.Seed, int) uint64 { return 0 }))
	s.Add(1)
	s.Add(2)
	s.Add(3)
	require.Equal(t, 3, s.cellCount)

	require.True(t, s.Remove(2))
	require.Equal(t, 2, s.elementCount)
	require.Equal(t, 3, s.cellCount)

	// Key 3 sits past the tombstone and must still be reachable.
	require.True(t, s.Contains(3))

	// The next insert on the chain reclaims the tombstone instead of
	// consuming a fresh cell.
	require.True(t, s.Add(4))
	require.Equal(t, 3, s.elementCount)
	require.Equal(t, 3, s.cellCount)
	require.True(t, s.Contains(1))
	require.True(t, s.Contains(3))
	require.True(t, s.Contains(4))
}

func TestHashSetDegenerateHash(t *testing.T) {
	probings(t, func(t *testing.T, p ProbingKind) {
		s := NewHashSet[int](0,
			WithProbing[int](p),
			WithHash[int](func(maphash.Seed, int) uint64 { return 7 }))
		defer s.Close()

		for i := 0; i < 200; i++ {
			require.True(t, s.Add(i))
		}
		require.Equal(t, 200, s.Len())
		for i := 0; i < 200; i++ {
			require.True(t, s.Contains(i))
		}
		for i := 0; i < 200; i++ {
			require.True(t, s.Remove(i))
		}
		require.True(t, s.IsEmpty())
	})
}

func TestHashSetSlackRatio(t *testing.T) {
	// Slack ratio 1 keeps the table at most half full.
	s := NewHashSet[int](0, WithSlackRatio[int](1))
	for i := 0; i < 100; i++ {
		s.Add(i)
	}
	require.GreaterOrEqual(t, s.Cap(), 2*s.Len())
	for i := 0; i < 100; i++ {
		require.True(t, s.Contains(i))
	}
}

func TestHashSetClearReset(t *testing.T) {
	s := NewHashSet[string](0)
	s.Add("a")
	s.Add("b")
	capBefore := s.Cap()

	s.Clear()
	require.Equal(t, 0, s.Len())
	require.Equal(t, capBefore, s.Cap())
	require.False(t, s.Contains("a"))

	s.Add("c")
	require.True(t, s.Contains("c"))

	s.Reset()
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.Cap())
	require.False(t, s.Contains("c"))
}

func TestHashSetCloneIndependence(t *testing.T) {
	s := NewHashSet[int](0)
	for i := 0; i < 100; i++ {
		s.Add(i)
	}

	c := s.Clone()
	require.Equal(t, s.toBuiltinSet(), c.toBuiltinSet())

	c.Remove(0)
	c.Add(1000)
	require.True(t, s.Contains(0))
	require.False(t, s.Contains(1000))

	s.Remove(1)
	require.True(t, c.Contains(1))
}

func TestHashSetTakeFrom(t *testing.T) {
	t.Run("alloc=heap", func(t *testing.T) {
		src := NewHashSet[int](0)
		for i := 0; i < 50; i++ {
			src.Add(i)
		}
		dst := NewHashSet[int](0)
		dst.TakeFrom(src)
		require.Equal(t, 50, dst.Len())
		require.Equal(t, 0, src.Len())
		require.Equal(t, 0, src.Cap())
		for i := 0; i < 50; i++ {
			require.True(t, dst.Contains(i))
		}
	})
	t.Run("alloc=fixed", func(t *testing.T) {
		src := NewHashSet[int](0,
			WithSlotAllocator[int](NewFixedAllocator[hashSlot[int]](64)))
		for i := 0; i < 40; i++ {
			src.Add(i)
		}
		dst := NewHashSet[int](0)
		dst.TakeFrom(src)
		require.Equal(t, 40, dst.Len())
		require.Equal(t, 0, src.Len())
		for i := 0; i < 40; i++ {
			require.True(t, dst.Contains(i))
		}
	})
}

func TestHashSetFixedAllocatorSaturation(t *testing.T) {
	// 64 slots at slack ratio 3 hold 47 elements; the 48th insert needs a
	// rebuild the fixed allocator cannot serve.
	s := NewHashSet[int](0,
		WithSlotAllocator[int](NewFixedAllocator[hashSlot[int]](64)))
	for i := 0; i < 47; i++ {
		require.True(t, s.Add(i))
	}
	require.Panics(t, func() { s.Add(47) })
}

func TestHashSetIter(t *testing.T) {
	s := NewHashSet[int](0)
	for i := 0; i < 10; i++ {
		s.Add(i)
	}

	it := s.Iter()
	require.Equal(t, SizeHint{Min: 10, Max: 10, HasMax: true}, it.Hint())
	got := make(map[int]struct{})
	for ; it.Ok(); it.Next() {
		got[it.Value()] = struct{}{}
	}
	require.Equal(t, s.toBuiltinSet(), got)
	require.Equal(t, SizeHint{Min: 0, Max: 0, HasMax: true}, it.Hint())
}

func TestHashSetSeedStability(t *testing.T) {
	seed := maphash.MakeSeed()
	a := NewHashSet[string](0, WithSeed[string](seed))
	b := NewHashSet[string](0, WithSeed[string](seed))
	keys := []string{"alpha", "beta", "gamma", "delta"}
	for _, k := range keys {
		a.Add(k)
		b.Add(k)
	}
	require.Equal(t, a.String(), b.String())
}

func TestHashSetRandom(t *testing.T) {
	probings(t, func(t *testing.T, p ProbingKind) {
		rng := rand.New(rand.NewSource(2024))
		s := NewHashSet[int](0, WithProbing[int](p))
		mirror := make(map[int]struct{})

		for op := 0; op < 10000; op++ {
			k := rng.Intn(500)
			switch r := rng.Float64(); {
			case r < 0.5:
				_, present := mirror[k]
				require.Equal(t, !present, s.Add(k))
				mirror[k] = struct{}{}
			case r < 0.8:
				_, present := mirror[k]
				require.Equal(t, present, s.Remove(k))
				delete(mirror, k)
			default:
				_, present := mirror[k]
				require.Equal(t, present, s.Contains(k))
			}
			require.Equal(t, len(mirror), s.Len())
		}
		require.Equal(t, mirror, s.toBuiltinSet())
	})
}
