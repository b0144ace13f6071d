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

// resettable is implemented by elements whose default-constructed state is
// not the zero value. *Nullable implements it: a default nested nullable
// must be outer-empty, which is not all-zero bytes.
type resettable interface {
	reset()
}

// bulkDefault default-constructs a run of elements over storage of
// unspecified content (fresh or recycled).
func bulkDefault[T any](dst []T) {
	if len(dst) == 0 {
		return
	}
	if _, ok := any(&dst[0]).(resettable); ok {
		for i := range dst {
			any(&dst[i]).(resettable).reset()
		}
		return
	}
	clear(dst)
}

// bulkCopy copy-constructs min(len(dst), len(src)) elements.
func bulkCopy[T any](dst, src []T) {
	copy(dst, src)
}

// bulkMove move-constructs elements into dst. The source run is left
// destroyed-or-drained: the caller follows up with bulkDestroy before
// freeing its binding, except under the zeromem build tag where the scrub
// happens eagerly here.
func bulkMove[T any](dst, src []T) {
	copy(dst, src)
	if zeroMemory {
		clear(src)
	}
}

// bulkDestroy destroys a run of elements, leaving raw storage. Zeroing
// doubles as destruction in Go: it unpins anything the elements referenced.
func bulkDestroy[T any](s []T) {
	clear(s)
}
