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

// Command soak drives the ktl containers against reference oracles for a
// configurable number of random operations. It runs a handful of scripted
// scenarios first, then a seeded differential loop: every mutation is applied
// both to a ktl container and to a builtin mirror, and the two are compared
// continuously. Any divergence aborts the run with a nonzero exit.
//
// Usage:
//
//	soak -ops 1000000 -seed 7 -keys 5000 -report 100000
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"

	"github.com/fulldump/biff"
	"github.com/fulldump/goconfig"
	"github.com/google/btree"
	"github.com/google/uuid"

	ktl "github.com/mtszkarbowiak/ktl-go"
)

type config struct {
	Ops    int   `usage:"number of random operations per container"`
	Seed   int64 `usage:"seed for the operation stream"`
	Keys   int   `usage:"size of the key universe"`
	Report int   `usage:"progress report interval in operations, 0 to disable"`
}

func main() {
	cfg := config{
		Ops:    1_000_000,
		Seed:   1,
		Keys:   10_000,
		Report: 100_000,
	}
	goconfig.Read(&cfg)
	if cfg.Ops <= 0 || cfg.Keys <= 0 {
		log.Fatalf("soak: ops and keys must be positive (ops=%d keys=%d)", cfg.Ops, cfg.Keys)
	}

	log.SetFlags(log.Ltime)
	log.Printf("soak: ops=%d seed=%d keys=%d", cfg.Ops, cfg.Seed, cfg.Keys)

	scripted()
	soakArray(cfg)
	soakHashSet(cfg)
	soakHashMap(cfg)

	log.Printf("soak: all runs passed")
}

// scripted replays the canonical usage sequences with exact expectations.
func scripted() {
	arr := ktl.NewArray[int](0)
	for _, v := range []int{10, 20, 30, 40} {
		arr.Add(v)
	}
	biff.AssertEqual(arr.Len(), 4)
	arr.RemoveAt(1)
	biff.AssertEqual(arr.Len(), 3)
	arr.Reset()
	biff.AssertEqual(arr.Cap(), 0)

	bits := ktl.NewBitArray(0)
	bits.Add(true)
	bits.Add(false)
	bits.Add(true)
	bits.InsertAtStable(1, true)
	biff.AssertEqual(bits.Len(), 4)
	biff.AssertEqual(bits.GetBit(0), true)
	biff.AssertEqual(bits.GetBit(1), true)
	biff.AssertEqual(bits.GetBit(2), false)
	biff.AssertEqual(bits.GetBit(3), true)
	bits.RemoveAtStable(0)
	biff.AssertEqual(bits.Len(), 3)

	set := ktl.NewHashSet[int](0)
	for k := 1; k <= 100; k++ {
		biff.AssertEqual(set.Add(k), true)
	}
	for k := 2; k <= 100; k += 2 {
		biff.AssertEqual(set.Remove(k), true)
	}
	biff.AssertEqual(set.Len(), 50)
	for k := 1; k <= 100; k++ {
		biff.AssertEqual(set.Contains(k), k%2 == 1)
	}

	m := ktl.NewHashMap[int, string](0)
	biff.AssertEqual(m.Put(1, "a"), true)
	biff.AssertEqual(m.Put(1, "b"), false)
	v, ok := m.Get(1)
	biff.AssertEqual(ok, true)
	biff.AssertEqual(v, "b")
	biff.AssertEqual(m.Remove(1), true)
	biff.AssertEqual(m.Remove(1), false)

	log.Printf("soak: scripted scenarios passed")
}

func soakArray(cfg config) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	a := ktl.NewArray[int64](0)
	defer a.Close()
	var mirror []int64

	for op := 0; op < cfg.Ops; op++ {
		switch r := rng.Float64(); {
		case r < 0.55:
			v := rng.Int63()
			a.Add(v)
			mirror = append(mirror, v)
		case r < 0.75:
			if len(mirror) == 0 {
				continue
			}
			i := rng.Intn(len(mirror))
			a.RemoveAtStable(i)
			mirror = append(mirror[:i], mirror[i+1:]...)
		default:
			if len(mirror) == 0 {
				continue
			}
			i := rng.Intn(len(mirror))
			if got := a.Get(i); got != mirror[i] {
				log.Fatalf("soak: array[%d] = %d, mirror has %d (op %d)", i, got, mirror[i], op)
			}
		}
		if a.Len() != len(mirror) {
			log.Fatalf("soak: array length %d, mirror %d (op %d)", a.Len(), len(mirror), op)
		}
		report(cfg, "array", op)
	}
	log.Printf("soak: array ok, final len %d", a.Len())
}

func soakHashSet(cfg config) {
	rng := rand.New(rand.NewSource(cfg.Seed + 1))
	s := ktl.NewHashSet[int64](0)
	defer s.Close()
	mirror := make(map[int64]struct{})
	// An ordered oracle on the side catches iteration anomalies the unordered
	// mirror cannot: at checkpoints both views must enumerate the same keys.
	ordered := btree.NewG[int64](8, func(a, b int64) bool { return a < b })

	for op := 0; op < cfg.Ops; op++ {
		k := int64(rng.Intn(cfg.Keys))
		switch r := rng.Float64(); {
		case r < 0.5:
			_, present := mirror[k]
			if added := s.Add(k); added == present {
				log.Fatalf("soak: set Add(%d) = %v, mirror disagrees (op %d)", k, added, op)
			}
			mirror[k] = struct{}{}
			ordered.ReplaceOrInsert(k)
		case r < 0.8:
			_, present := mirror[k]
			if removed := s.Remove(k); removed != present {
				log.Fatalf("soak: set Remove(%d) = %v, mirror disagrees (op %d)", k, removed, op)
			}
			delete(mirror, k)
			ordered.Delete(k)
		default:
			_, present := mirror[k]
			if s.Contains(k) != present {
				log.Fatalf("soak: set Contains(%d) disagrees with mirror (op %d)", k, op)
			}
		}
		if s.Len() != len(mirror) || s.Len() != ordered.Len() {
			log.Fatalf("soak: set length %d, mirror %d, btree %d (op %d)", s.Len(), len(mirror), ordered.Len(), op)
		}
		if cfg.Report > 0 && op%cfg.Report == cfg.Report-1 {
			verifySetIteration(s, ordered, op)
		}
		report(cfg, "hashset", op)
	}
	verifySetIteration(s, ordered, cfg.Ops)
	log.Printf("soak: hashset ok, final len %d", s.Len())
}

// verifySetIteration checks that a full iteration of the set yields exactly
// the keys the ordered oracle holds.
func verifySetIteration(s *ktl.HashSet[int64], ordered *btree.BTreeG[int64], op int) {
	var got []int64
	s.All(func(k int64) bool {
		got = append(got, k)
		return true
	})
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	var want []int64
	ordered.Ascend(func(k int64) bool {
		want = append(want, k)
		return true
	})
	if len(got) != len(want) {
		log.Fatalf("soak: set iteration yields %d keys, oracle %d (op %d)", len(got), len(want), op)
	}
	for i := range got {
		if got[i] != want[i] {
			log.Fatalf("soak: set iteration key %d is %d, oracle %d (op %d)", i, got[i], want[i], op)
		}
	}
}

func soakHashMap(cfg config) {
	rng := rand.New(rand.NewSource(cfg.Seed + 2))
	m := ktl.NewHashMap[string, int](0)
	defer m.Close()
	mirror := make(map[string]int)

	// String keys stress hashing beyond small integers.
	universe := make([]string, cfg.Keys)
	for i := range universe {
		universe[i] = uuid.NewString()
	}

	for op := 0; op < cfg.Ops; op++ {
		k := universe[rng.Intn(len(universe))]
		switch r := rng.Float64(); {
		case r < 0.55:
			v := rng.Int()
			_, present := mirror[k]
			if added := m.Put(k, v); added == present {
				log.Fatalf("soak: map Put(%q) = %v, mirror disagrees (op %d)", k, added, op)
			}
			mirror[k] = v
		case r < 0.8:
			_, present := mirror[k]
			if removed := m.Remove(k); removed != present {
				log.Fatalf("soak: map Remove(%q) disagrees with mirror (op %d)", k, op)
			}
			delete(mirror, k)
		default:
			want, present := mirror[k]
			got, ok := m.Get(k)
			if ok != present || (ok && got != want) {
				log.Fatalf("soak: map Get(%q) = (%d, %v), mirror (%d, %v) (op %d)", k, got, ok, want, present, op)
			}
		}
		if m.Len() != len(mirror) {
			log.Fatalf("soak: map length %d, mirror %d (op %d)", m.Len(), len(mirror), op)
		}
		report(cfg, "hashmap", op)
	}

	// Final full sweep.
	seen := 0
	m.All(func(k string, v int) bool {
		if want, ok := mirror[k]; !ok || want != v {
			log.Fatalf("soak: map iteration yields (%q, %d), mirror disagrees", k, v)
		}
		seen++
		return true
	})
	if seen != len(mirror) {
		fmt.Fprintf(os.Stderr, "soak: map iteration yields %d pairs, mirror %d\n", seen, len(mirror))
		os.Exit(1)
	}
	log.Printf("soak: hashmap ok, final len %d", m.Len())
}

func report(cfg config, name string, op int) {
	if cfg.Report > 0 && op%cfg.Report == cfg.Report-1 {
		log.Printf("soak: %s %d/%d ops", name, op+1, cfg.Ops)
	}
}
