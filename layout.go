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
	"math/bits"
	"unsafe"
)

// layout glues an element type to an allocator's byte bounds: it owns the
// capacity arithmetic of a container. All quantities are in elements.
type layout[E any] struct {
	minElems int
	maxElems int
	defElems int
}

// unboundedElems marks an effectively unbounded maximum, treated as a
// sentinel by the binary-masking check.
const unboundedElems = 1 << 50

func makeLayout[E any](a Allocator[E], defaultElems int) layout[E] {
	var z E
	size := int(unsafe.Sizeof(z))
	if size == 0 {
		// Zero-size elements occupy no storage; only the counts matter.
		size = 1
	}
	l := layout[E]{
		minElems: a.MinCapacity() / size,
		maxElems: a.MaxCapacity() / size,
	}
	if l.maxElems > unboundedElems {
		l.maxElems = unboundedElems
	}
	l.defElems = defaultElems
	if l.defElems < l.minElems {
		l.defElems = l.minElems
	}
	if l.defElems > l.maxElems {
		l.defElems = l.maxElems
	}
	return l
}

// initCapacity returns the capacity of a container's first allocation.
func (l layout[E]) initCapacity(minReq int) int {
	c := minReq
	if c < l.defElems {
		c = l.defElems
	}
	assertf(c <= l.maxElems, "ktl: requested capacity %d exceeds allocator maximum %d", c, l.maxElems)
	return c
}

// nextCapacity applies the growth policy until the capacity covers minReq,
// capped at the allocator maximum.
func (l layout[E]) nextCapacity(oldCap, minReq int, g GrowthFunc) int {
	if minReq <= oldCap {
		return oldCap
	}
	c := oldCap
	for c < minReq {
		n := g(c)
		if n <= c {
			// Growth policies stall on tiny capacities (1 + 1/2 == 1).
			n = c + 1
		}
		c = n
	}
	if c > l.maxElems {
		c = l.maxElems
	}
	assertf(c >= minReq, "ktl: capacity %d cannot reach %d within allocator maximum %d", oldCap, minReq, l.maxElems)
	return c
}

// allocate acquires capacity elements through the binding and returns the
// storage, which may be larger than requested. Refusal is fatal: allocator
// softfails are configuration errors by contract.
func (l layout[E]) allocate(b Binding[E], capacity int) []E {
	got := b.Allocate(capacity)
	assertf(got >= capacity, "ktl: allocator refused %d elements (offered %d)", capacity, got)
	s := b.Get()
	assertf(len(s) >= got, "ktl: binding storage shorter than its reported capacity: %d < %d", len(s), got)
	if got > 0 {
		var z E
		if a := unsafe.Alignof(z); a > 1 {
			assertf(uintptr(unsafe.Pointer(&s[0]))%a == 0, "ktl: storage misaligned for element alignment %d", a)
		}
	}
	return s[:got]
}

// hasBinaryMasking reports whether every reachable capacity can be a power
// of two: both bounds are powers of two or sit at the natural sentinels.
// The hash containers require it.
func (l layout[E]) hasBinaryMasking() bool {
	minOK := l.minElems == 0 || isPow2(l.minElems)
	maxOK := l.maxElems >= unboundedElems || isPow2(l.maxElems)
	return minOK && maxOK
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ceilPow2 returns the smallest power of two >= n.
func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
