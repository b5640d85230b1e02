// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package numeric

// Monotone is a non-decreasing integer function over a bounded domain.
type Monotone func(x uint64) uint64

// BoundedBinarySearch returns the smallest x in [lo, hi] such that f(x) >= y,
// or hi if no such x exists in the range. f must be non-decreasing over
// [lo, hi]. Converges in O(log(hi-lo)) steps by always halving a closed
// range, per the spec's boundedness requirement.
func BoundedBinarySearch(lo, hi uint64, y uint64, f Monotone) uint64 {
	if lo >= hi {
		return hi
	}
	if f(hi) < y {
		return hi
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		if f(mid) >= y {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
