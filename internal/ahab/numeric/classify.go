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

// Package numeric implements the fixed-width integer primitives the rest of
// the control loop is built on: leftmost-bit classification, approximate
// division/multiplication lookup tables, and bounded binary search. None of
// these use floating point; they are the pieces that let the hot path run on
// shifts, compares and small table lookups only.
package numeric

// classifyWidth is the input width of the leftmost-bit classifier, which is
// conceptually a ternary match table over a 32-bit input, ordered
// highest-priority (most-significant bit) first. Entry i matches any x with
// bit i set and no higher bit set; the match is expressed as
// (1<<i) &&& ((0xFFFFFFFF<<i) & 0xFFFFFFFF) conceptually. We implement the
// same priority-encoder behavior directly rather than building a literal
// ternary table, since Go has no native ternary-match type; the lookup
// semantics are identical.
const classifyWidth = 32

// LeadingBit returns the exponent e of the most-significant set bit of x
// (0 for bit 0, 31 for bit 31). Matches spec semantics for x == 0 by
// returning 0 (there is no set bit; callers must not pass 0 where a real
// sample is expected).
func LeadingBit(x uint32) uint {
	if x == 0 {
		return 0
	}
	var e uint
	for i := uint(classifyWidth - 1); ; i-- {
		if x&(1<<i) != 0 {
			e = i
			break
		}
		if i == 0 {
			break
		}
	}
	return e
}

// NormalizeShift returns the right-shift amount that rescales x so it
// occupies exactly p bits, i.e. lands in [2^(p-1), 2^p) with its leading bit
// at position p-1 (the fixed precision width used by the lookup tables). A
// negative result means x must be left-shifted instead; callers clamp
// accordingly.
func NormalizeShift(x uint32, p uint) int {
	if x == 0 {
		return 0
	}
	return int(LeadingBit(x)) - int(p-1)
}

// Shift applies a signed shift amount: positive shifts right, negative
// shifts left. Used to apply the result of NormalizeShift uniformly.
func Shift(x uint64, amount int) uint64 {
	if amount >= 0 {
		return x >> uint(amount)
	}
	return x << uint(-amount)
}
