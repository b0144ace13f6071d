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

import "hash/maphash"

// Default capacities, in elements (the bit array counts blocks of 64 bits).
// Overridable per container through the initialCapacity constructor argument
// and Reserve.
const (
	defaultArrayCapacity = 4
	defaultRingCapacity  = 16
	defaultHashCapacity  = 64
	defaultSlackRatio    = 3
)

// config carries the knobs shared by the linear containers (Array, BitArray,
// Ring) and Box.
type config[T any] struct {
	alloc  Allocator[T]
	growth GrowthFunc
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		alloc:  HeapAllocator[T]{},
		growth: GrowthDouble,
	}
}

// Option configures a linear container over elements of type T.
type Option[T any] func(*config[T])

// WithAllocator is an option to host a container's storage on a specific
// allocator instead of the heap.
func WithAllocator[T any](a Allocator[T]) Option[T] {
	return func(c *config[T]) { c.alloc = a }
}

// WithGrowth is an option to select the capacity growth policy.
func WithGrowth[T any](g GrowthFunc) Option[T] {
	return func(c *config[T]) { c.growth = g }
}

// HashFunc hashes a key under a seed. The hash of a key must be stable for
// the key's lifetime in a container.
type HashFunc[K comparable] func(seed maphash.Seed, key K) uint64

// ProbingKind selects the probe sequence of the hash containers.
type ProbingKind uint8

const (
	// LinearProbing advances one slot at a time.
	LinearProbing ProbingKind = iota
	// TriangularProbing advances by an increasing stride (1, 2, 3, ...),
	// which still visits every slot of a power-of-two table.
	TriangularProbing
)

// hashConfig carries the knobs of HashSet[K] and HashMap[K, V].
type hashConfig[K comparable] struct {
	hash    HashFunc[K]
	seed    maphash.Seed
	slack   int
	probing ProbingKind
	growth  GrowthFunc
	slots   Allocator[Nullable[Nullable[K]]]
}

func defaultHashConfig[K comparable]() hashConfig[K] {
	return hashConfig[K]{
		hash:    maphash.Comparable[K],
		seed:    maphash.MakeSeed(),
		slack:   defaultSlackRatio,
		probing: LinearProbing,
		growth:  GrowthDouble,
		slots:   HeapAllocator[Nullable[Nullable[K]]]{},
	}
}

// HashOption configures a hash container keyed by K.
type HashOption[K comparable] func(*hashConfig[K])

// WithHash is an option to specify the hash function. The default is the
// same hash used by Go's builtin map, via hash/maphash.
func WithHash[K comparable](h HashFunc[K]) HashOption[K] {
	return func(c *hashConfig[K]) { c.hash = h }
}

// WithSeed is an option to fix the hash seed, which makes iteration order
// and collision patterns reproducible. Intended for tests.
func WithSeed[K comparable](seed maphash.Seed) HashOption[K] {
	return func(c *hashConfig[K]) { c.seed = seed }
}

// WithSlackRatio is an option to set the load-factor slack ratio r: a table
// holding n elements keeps at least n/r + 1 slots free. Higher r packs
// tighter and probes longer.
func WithSlackRatio[K comparable](r int) HashOption[K] {
	assertf(r > 0, "ktl: slack ratio must be positive, got %d", r)
	return func(c *hashConfig[K]) { c.slack = r }
}

// WithProbing is an option to select the probe sequence.
func WithProbing[K comparable](p ProbingKind) HashOption[K] {
	return func(c *hashConfig[K]) { c.probing = p }
}

// WithSlotAllocator is an option to host the slot storage of a hash
// container on a specific allocator. The allocator's bounds must support
// power-of-two capacities.
func WithSlotAllocator[K comparable](a Allocator[Nullable[Nullable[K]]]) HashOption[K] {
	return func(c *hashConfig[K]) { c.slots = a }
}
