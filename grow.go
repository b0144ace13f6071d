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

// GrowthFunc maps a capacity to the next larger capacity. The layout helper
// applies it repeatedly until the requirement is met.
type GrowthFunc func(capacity int) int

// GrowthNatural grows by half: c + c/2.
func GrowthNatural(c int) int { return c + c/2 }

// GrowthDouble doubles the capacity. It is the default policy and the one
// the hash containers rely on to stay at powers of two.
func GrowthDouble(c int) int { return 2 * c }

// GrowthRelaxed grows by a quarter: c + c/4.
func GrowthRelaxed(c int) int { return c + c/4 }

// GrowthBalanced doubles below the threshold and grows naturally above it.
func GrowthBalanced(threshold int) GrowthFunc {
	return func(c int) int {
		if c < threshold {
			return 2 * c
		}
		return c + c/2
	}
}

// slotsForElements is the load-factor policy of the hash containers: the
// slot count required to hold n elements at slack ratio r, keeping one free
// slot in r+1 per element plus a probe terminator. Higher r packs tighter.
func slotsForElements(n, r int) int {
	return n + n/r + 1
}
