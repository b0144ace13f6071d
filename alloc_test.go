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
	"testing"

	"github.com/stretchr/testify/require"
)

// countingAllocator wraps another allocator and counts allocations and
// frees, to validate that containers pair them correctly.
type countingAllocator[E any] struct {
	inner Allocator[E]
	alloc int
	freed int
}

func newCountingAllocator[E any](inner Allocator[E]) *countingAllocator[E] {
	return &countingAllocator[E]{inner: inner}
}

func (a *countingAllocator[E]) NewBinding() Binding[E] {
	return &countingBinding[E]{owner: a, inner: a.inner.NewBinding()}
}

func (a *countingAllocator[E]) MinCapacity() int { return a.inner.MinCapacity() }
func (a *countingAllocator[E]) MaxCapacity() int { return a.inner.MaxCapacity() }
func (a *countingAllocator[E]) Nullable() bool   { return a.inner.Nullable() }

type countingBinding[E any] struct {
	owner *countingAllocator[E]
	inner Binding[E]
}

func (b *countingBinding[E]) Allocate(n int) int {
	got := b.inner.Allocate(n)
	if got > 0 {
		b.owner.alloc++
	}
	return got
}

func (b *countingBinding[E]) Reallocate(n int) int { return b.inner.Reallocate(n) }

func (b *countingBinding[E]) Free() {
	b.owner.freed++
	b.inner.Free()
}

func (b *countingBinding[E]) Get() []E         { return b.inner.Get() }
func (b *countingBinding[E]) MovesItems() bool { return b.inner.MovesItems() }

func TestHeapBindingContract(t *testing.T) {
	var a HeapAllocator[int]
	b := a.NewBinding()
	require.True(t, b.MovesItems())

	got := b.Allocate(10)
	require.Equal(t, 10, got)
	require.Len(t, b.Get(), 10)

	require.Equal(t, 0, b.Reallocate(20))

	b.Get()[3] = 99
	require.Equal(t, 99, b.Get()[3])

	b.Free()
	require.Nil(t, b.Get())
	require.Panics(t, func() { b.Free() })
}

func TestFixedBindingContract(t *testing.T) {
	a := NewFixedAllocator[int64](8)
	require.Equal(t, 64, a.MinCapacity())
	require.Equal(t, 64, a.MaxCapacity())
	require.False(t, a.Nullable())

	b := a.NewBinding()
	require.False(t, b.MovesItems())

	// Only the exact size is served; everything else is a softfail.
	require.Equal(t, 0, b.Allocate(4))
	require.Equal(t, 8, b.Allocate(8))
	require.Len(t, b.Get(), 8)
	require.Panics(t, func() { b.Allocate(8) })

	b.Free()
	require.Nil(t, b.Get())
}

func TestArenaBinding(t *testing.T) {
	arena := NewArena[int64](16)

	b1 := arena.NewBinding()
	require.Equal(t, 8, b1.Allocate(8))
	require.Equal(t, 8, arena.Used())

	// Top allocation extends in place.
	require.Equal(t, 12, b1.Reallocate(12))
	require.Equal(t, 12, arena.Used())

	b2 := arena.NewBinding()
	require.Equal(t, 4, b2.Allocate(4))
	require.Equal(t, 16, arena.Used())

	// b1 is no longer on top, so it cannot extend.
	require.Equal(t, 0, b1.Reallocate(13))

	// Exhausted.
	b3 := arena.NewBinding()
	require.Equal(t, 0, b3.Allocate(1))

	// Freeing the top allocation rolls it back; freeing an inner one is
	// deferred to Reset.
	b2.Free()
	require.Equal(t, 12, arena.Used())
	b1.Free()
	require.Equal(t, 0, arena.Used())

	arena.Reset()
	require.Equal(t, 0, arena.Used())
}

func TestArenaRejectsPointerfulElements(t *testing.T) {
	require.Panics(t, func() { NewArena[string](8) })
	require.Panics(t, func() { NewArena[[]int](8) })
	require.NotPanics(t, func() { NewArena[[4]int64](8) })
	type flat struct {
		A int32
		B [2]uint8
	}
	require.NotPanics(t, func() { NewArena[flat](8) })
	type deep struct {
		A flat
		B *int
	}
	require.Panics(t, func() { NewArena[deep](8) })
}

func TestArenaHostedArray(t *testing.T) {
	arena := NewArena[int64](1024)
	a := NewArray[int64](0, WithAllocator[int64](arena))
	for i := int64(0); i < 100; i++ {
		a.Add(i)
	}
	require.Equal(t, 100, a.Len())
	for i := 0; i < 100; i++ {
		require.EqualValues(t, i, a.Get(i))
	}
	a.Close()
	arena.Reset()
}

func TestPageBinding(t *testing.T) {
	a := NewPageAllocator[int64]()
	require.True(t, a.Nullable())

	b := a.NewBinding()
	got := b.Allocate(4)
	require.GreaterOrEqual(t, got, 4)

	s := b.Get()
	require.GreaterOrEqual(t, len(s), 4)
	s[0], s[got-1] = 7, 9
	require.EqualValues(t, 7, b.Get()[0])
	require.EqualValues(t, 9, b.Get()[got-1])

	b.Free()
	require.Nil(t, b.Get())
}

func TestPageAllocatorRejectsPointerfulElements(t *testing.T) {
	require.Panics(t, func() { NewPageAllocator[string]() })
}

func TestAllocatorPairing(t *testing.T) {
	a := newCountingAllocator[int](HeapAllocator[int]{})
	arr := NewArray[int](0, WithAllocator[int](Allocator[int](a)))

	for i := 0; i < 100; i++ {
		arr.Add(i)
	}

	// 4 -> 8 -> 16 -> 32 -> 64 -> 128
	const expected = 6
	require.Equal(t, expected, a.alloc)
	require.Equal(t, expected-1, a.freed)

	arr.Close()
	require.Equal(t, expected, a.freed)
}
