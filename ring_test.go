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

func (r *Ring[T]) toSlice() []T {
	var s []T
	r.All(func(v T) bool {
		s = append(s, v)
		return true
	})
	return s
}

func TestRingFIFO(t *testing.T) {
	r := NewRing[int](0)
	require.True(t, r.IsEmpty())

	for i := 0; i < 5; i++ {
		r.PushBack(i)
	}
	require.Equal(t, 5, r.Len())

	front, ok := r.PeekFront()
	require.True(t, ok)
	require.Equal(t, 0, front)
	back, ok := r.PeekBack()
	require.True(t, ok)
	require.Equal(t, 4, back)

	for i := 0; i < 5; i++ {
		v, ok := r.PopFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok = r.PopFront()
	require.False(t, ok)
	_, ok = r.PeekFront()
	require.False(t, ok)
}

func TestRingDeque(t *testing.T) {
	r := NewRing[int](0)
	r.PushBack(2)
	r.PushFront(1)
	r.PushBack(3)
	r.PushFront(0)
	require.Equal(t, []int{0, 1, 2, 3}, r.toSlice())

	v, ok := r.PopBack()
	require.True(t, ok)
	require.Equal(t, 3, v)
	v, ok = r.PopFront()
	require.True(t, ok)
	require.Equal(t, 0, v)
	require.Equal(t, []int{1, 2}, r.toSlice())
}

func TestRingWrapAndGrow(t *testing.T) {
	r := NewRing[int](0)
	// Rotate the head away from zero, then force growth while wrapped.
	for i := 0; i < 12; i++ {
		r.PushBack(i)
	}
	for i := 0; i < 8; i++ {
		v, ok := r.PopFront()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	for i := 12; i < 40; i++ {
		r.PushBack(i)
	}

	// Elements must come out in logical order despite the wrap and the
	// linearizing grow.
	want := make([]int, 0, 32)
	for i := 8; i < 40; i++ {
		want = append(want, i)
	}
	require.Equal(t, want, r.toSlice())
}

func TestRingClearReset(t *testing.T) {
	r := NewRing[int](0)
	for i := 0; i < 10; i++ {
		r.PushBack(i)
	}
	r.Clear()
	require.Equal(t, 0, r.Len())
	require.Greater(t, r.Cap(), 0)

	r.PushBack(1)
	require.Equal(t, []int{1}, r.toSlice())

	r.Reset()
	require.Equal(t, 0, r.Len())
	require.Equal(t, 0, r.Cap())
}

func TestRingCloneTakeFrom(t *testing.T) {
	r := NewRing[int](0)
	for i := 0; i < 20; i++ {
		r.PushBack(i)
	}
	r.PopFront()
	r.PopFront()

	c := r.Clone()
	require.Equal(t, r.toSlice(), c.toSlice())
	c.PushBack(100)
	require.Equal(t, 18, r.Len())

	d := NewRing[int](0)
	d.TakeFrom(r)
	require.Equal(t, 18, d.Len())
	require.Equal(t, 0, r.Len())
	v, ok := d.PopFront()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestRingFixedAllocatorMigration(t *testing.T) {
	src := NewRing[int](0, WithAllocator[int](NewFixedAllocator[int](16)))
	for i := 0; i < 10; i++ {
		src.PushBack(i)
	}
	dst := NewRing[int](0)
	dst.TakeFrom(src)
	require.Equal(t, 10, dst.Len())
	require.Equal(t, 0, src.Len())
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, dst.toSlice())
}

func TestRingIter(t *testing.T) {
	r := NewRing[int](0)
	for i := 0; i < 4; i++ {
		r.PushBack(i)
	}
	r.PopFront()

	it := r.Iter()
	require.Equal(t, SizeHint{Min: 3, Max: 3, HasMax: true}, it.Hint())
	var got []int
	for ; it.Ok(); it.Next() {
		got = append(got, it.Value())
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestRingRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	r := NewRing[int](0)
	var mirror []int

	for op := 0; op < 10000; op++ {
		switch x := rng.Float64(); {
		case x < 0.3:
			v := rng.Int()
			r.PushBack(v)
			mirror = append(mirror, v)
		case x < 0.5:
			v := rng.Int()
			r.PushFront(v)
			mirror = append([]int{v}, mirror...)
		case x < 0.7:
			v, ok := r.PopFront()
			require.Equal(t, len(mirror) > 0, ok)
			if ok {
				require.Equal(t, mirror[0], v)
				mirror = mirror[1:]
			}
		case x < 0.9:
			v, ok := r.PopBack()
			require.Equal(t, len(mirror) > 0, ok)
			if ok {
				require.Equal(t, mirror[len(mirror)-1], v)
				mirror = mirror[:len(mirror)-1]
			}
		default:
			require.Equal(t, len(mirror), r.Len())
		}
	}
	if len(mirror) == 0 {
		require.True(t, r.IsEmpty())
	} else {
		require.Equal(t, mirror, r.toSlice())
	}
}
