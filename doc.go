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

// Package ktl is a family of dynamically-sized containers (Array, BitArray,
// Ring, HashSet, HashMap, Box) built on a pluggable allocator-binding model.
//
// # Allocator bindings
//
// Every container owns a Binding: per-instance allocator state that can
// acquire and release a single contiguous run of elements. Bindings come from
// an Allocator, of which four are provided: HeapAllocator (the default,
// backed by Go's builtin make), FixedAllocator (a buffer of a fixed element
// count created together with the binding), Arena (bump allocation out of a
// single chunk, with O(1) bulk recycling via Arena.Reset), and PageAllocator
// (anonymous mmap'd pages on unix builds). A binding reports MovesItems: if
// true, handing the binding to another container transfers the storage
// identity (a pointer swap); if false the storage is intrinsic to the binding
// and a container move degrades to an element-wise migration into a freshly
// allocated binding. Both paths are implemented by every container's
// TakeFrom.
//
// Capacity arithmetic is centralized in a small layout helper that clamps
// requests between the allocator's static bounds, applies a GrowthFunc
// (double, three-halves, and friends) and panics on exhaustion. Capacity
// exhaustion and API misuse are programming errors here, not recoverable
// conditions: the containers report benign absence through ok-booleans and
// crash deterministically on everything else.
//
// # Hash containers and the tombstone ladder
//
// HashSet and HashMap are open-addressing tables over power-of-two
// capacities, probing with hash(key) & (capacity-1) and either linear or
// triangular steps. A slot must distinguish three states - empty, occupied,
// deleted - and does so without a separate metadata array: a slot is a
// Nullable[Nullable[K]]. The outer nullable empty means the slot is empty;
// outer occupied with the inner nullable empty means a deletion tombstone;
// both occupied means a live key. Making that nesting free is the job of the
// Nullable tombstone ladder: a Nullable[T] whose element is itself
// tombstone-aware encodes its own emptiness as one of the element's in-band
// poison states, so Nullable[Nullable[K]] costs no more space than
// Nullable[K]. See the comment on Nullable for the exact encoding.
//
// An empty slot terminates a probe chain; a deleted slot does not, but is
// reclaimed by the next insertion that probes over it. The table rehashes
// when the load policy (slots = n + n/slackRatio + 1) outgrows the capacity,
// after which no tombstones remain.
//
// # Iteration
//
// Containers expose an All(yield) sweep and a puller-style iterator with a
// SizeHint. Iteration order of the hash containers is unspecified and may
// change across any mutation.
//
// None of the containers are goroutine-safe.
package ktl
