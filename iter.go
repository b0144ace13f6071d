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

// SizeHint is an advisory bound on the number of elements an iterator has
// left to produce. Min is always valid; Max only when HasMax is set.
// Consumers may use it to presize but must not rely on it for correctness.
type SizeHint struct {
	Min    int
	Max    int
	HasMax bool
}

func exactHint(n int) SizeHint {
	return SizeHint{Min: n, Max: n, HasMax: true}
}
