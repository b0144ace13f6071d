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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func (m *HashMap[K, V]) toBuiltinMap() map[K]V {
	r := make(map[K]V)
	m.All(func(k K, v V) bool {
		r[k] = v
		return true
	})
	return r
}

// randElement returns a pseudo-random element. Elements are not selected
// uniformly; good enough to drive the random-operation tests.
func (m *HashMap[K, V]) randElement(rng *rand.Rand) (key K, value V, ok bool) {
	if m.Len() == 0 {
		return key, value, false
	}
	skip := rng.Intn(m.Len())
	m.All(func(k K, v V) bool {
		key, value, ok = k, v, true
		skip--
		return skip >= 0
	})
	return key, value, ok
}

func TestHashMapBasic(t *testing.T) {
	m := NewHashMap[int, string](0)
	defer m.Close()

	require.True(t, m.Put(1, "a"))
	require.False(t, m.Put(1, "b"), "second put of the same key updates")
	require.Equal(t, 1, m.Len())

	v, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = m.Get(2)
	require.False(t, ok)
	require.Equal(t, "fallback", m.GetOrDefault(2, "fallback"))
	require.Equal(t, "b", m.GetOrDefault(1, "fallback"))

	require.True(t, m.ContainsKey(1))
	require.False(t, m.ContainsKey(2))

	require.True(t, m.Remove(1))
	require.False(t, m.Remove(1))
	require.True(t, m.IsEmpty())
}

func TestHashMapManyKeys(t *testing.T) {
	m := NewHashMap[int, int](0)
	defer m.Close()

	for i := 0; i < 5000; i++ {
		require.True(t, m.Put(i, i*i))
	}
	require.Equal(t, 5000, m.Len())
	for i := 0; i < 5000; i++ {
		v, ok := m.Get(i)
		require.True(t, ok, "key %d", i)
		require.Equal(t, i*i, v)
	}
	for i := 0; i < 5000; i += 2 {
		require.True(t, m.Remove(i))
	}
	require.Equal(t, 2500, m.Len())
	for i := 0; i < 5000; i++ {
		_, ok := m.Get(i)
		require.Equal(t, i%2 == 1, ok, "key %d", i)
	}
}

func TestHashMapReserve(t *testing.T) {
	m := NewHashMap[int, int](0)
	m.Reserve(100)
	capBefore := m.Cap()
	require.True(t, isPow2(capBefore))
	require.GreaterOrEqual(t, capBefore, slotsForElements(100, defaultSlackRatio))

	// No rehash while inserting within the reservation.
	for i := 0; i < 100; i++ {
		m.Put(i, i)
	}
	require.Equal(t, capBefore, m.Cap())

	m.Reserve(100)
	require.Equal(t, capBefore, m.Cap())
}

func TestHashMapClearReset(t *testing.T) {
	m := NewHashMap[string, int](0)
	m.Put("a", 1)
	m.Put("b", 2)
	capBefore := m.Cap()

	m.Clear()
	require.Equal(t, 0, m.Len())
	require.Equal(t, capBefore, m.Cap())
	_, ok := m.Get("a")
	require.False(t, ok)

	m.Reset()
	require.Equal(t, 0, m.Cap())
	require.False(t, m.ContainsKey("a"))
}

func TestHashMapCloneIndependence(t *testing.T) {
	m := NewHashMap[int, string](0)
	m.Put(1, "one")
	m.Put(2, "two")

	c := m.Clone()
	require.Equal(t, m.toBuiltinMap(), c.toBuiltinMap())

	c.Put(1, "uno")
	c.Put(3, "tres")
	v, _ := m.Get(1)
	require.Equal(t, "one", v)
	require.False(t, m.ContainsKey(3))

	m.Remove(2)
	require.True(t, c.ContainsKey(2))
}

func TestHashMapTakeFrom(t *testing.T) {
	src := NewHashMap[int, int](0)
	for i := 0; i < 50; i++ {
		src.Put(i, -i)
	}
	dst := NewHashMap[int, int](0)
	dst.Put(99, 99)

	dst.TakeFrom(src)
	require.Equal(t, 50, dst.Len())
	require.Equal(t, 0, src.Len())
	require.Equal(t, 0, src.Cap())
	for i := 0; i < 50; i++ {
		v, ok := dst.Get(i)
		require.True(t, ok)
		require.Equal(t, -i, v)
	}
}

func TestHashMapIterators(t *testing.T) {
	m := NewHashMap[int, int](0)
	for i := 0; i < 10; i++ {
		m.Put(i, i*100)
	}

	it := m.Iter()
	require.Equal(t, SizeHint{Min: 10, Max: 10, HasMax: true}, it.Hint())
	got := make(map[int]int)
	for ; it.Ok(); it.Next() {
		got[it.Key()] = it.Value()
	}
	require.Equal(t, m.toBuiltinMap(), got)

	// In-place value updates through the puller.
	for it := m.Iter(); it.Ok(); it.Next() {
		*it.ValuePtr()++
	}
	for i := 0; i < 10; i++ {
		v, _ := m.Get(i)
		require.Equal(t, i*100+1, v)
	}

	keys := make(map[int]struct{})
	m.Keys(func(k int) bool {
		keys[k] = struct{}{}
		return true
	})
	require.Len(t, keys, 10)

	sum := 0
	m.Values(func(v int) bool {
		sum += v
		return true
	})
	require.Equal(t, 4500+10, sum)
}

func TestHashMapAllocatorPairing(t *testing.T) {
	slots := newCountingAllocator[hashSlot[int]](HeapAllocator[hashSlot[int]]{})
	values := newCountingAllocator[int](HeapAllocator[int]{})
	m := NewHashMapIn[int, int](Allocator[int](values), 0,
		WithSlotAllocator[int](Allocator[hashSlot[int]](slots)))

	for i := 0; i < 1000; i++ {
		m.Put(i, i)
	}
	require.Greater(t, slots.alloc, 1)
	require.Equal(t, slots.alloc, values.alloc)
	require.Equal(t, slots.alloc-1, slots.freed)

	m.Close()
	require.Equal(t, slots.alloc, slots.freed)
	require.Equal(t, values.alloc, values.freed)
}

func TestHashMapRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(4711))
	m := NewHashMap[int, int](0)
	e := make(map[int]int)

	for i := 0; i < 10000; i++ {
		switch r := rng.Float64(); {
		case r < 0.5: // 50% inserts
			k, v := rng.Intn(2000), rng.Int()
			require.Equal(t, func() bool { _, ok := e[k]; return !ok }(), m.Put(k, v))
			e[k] = v
		case r < 0.65: // 15% updates
			if k, _, ok := m.randElement(rng); !ok {
				require.Equal(t, 0, m.Len())
			} else {
				v := rng.Int()
				require.False(t, m.Put(k, v))
				e[k] = v
			}
		case r < 0.8: // 15% deletes
			if k, _, ok := m.randElement(rng); !ok {
				require.Equal(t, 0, m.Len())
			} else {
				require.True(t, m.Remove(k))
				delete(e, k)
			}
		default: // 20% lookups
			if k, v, ok := m.randElement(rng); !ok {
				require.Equal(t, 0, m.Len())
			} else {
				require.Equal(t, e[k], v)
			}
		}
		require.Equal(t, len(e), m.Len())
	}
	require.Equal(t, e, m.toBuiltinMap())
}
