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

import "testing"

func TestMultiplicationTableApproximatesProduct(t *testing.T) {
	m := NewMultiplicationTable(6, 0.5)
	cases := [][2]uint64{{10, 20}, {1000, 3}, {5, 5}}
	for _, c := range cases {
		got := m.Multiply(c[0], c[1])
		want := c[0] * c[1]
		diff := int64(got) - int64(want)
		if diff < 0 {
			diff = -diff
		}
		tolerance := want/10 + 4
		if uint64(diff) > tolerance {
			t.Errorf("Multiply(%d,%d)=%d want~%d (tol %d)", c[0], c[1], got, want, tolerance)
		}
	}
}

func TestMultiplicationTableHandlesOperandsWiderThanTableBits(t *testing.T) {
	// Both operands' leading bit is well above the table's 6-bit width, the
	// case that previously made normalization saturate every operand to the
	// same top bucket regardless of input.
	m := NewMultiplicationTable(6, 0.5)
	cases := [][2]uint64{{100000, 7}, {1 << 20, 1 << 20}, {999999, 3}}
	for _, c := range cases {
		got := m.Multiply(c[0], c[1])
		want := c[0] * c[1]
		diff := int64(got) - int64(want)
		if diff < 0 {
			diff = -diff
		}
		tolerance := want/10 + 4
		if uint64(diff) > tolerance {
			t.Errorf("Multiply(%d,%d)=%d want~%d (tol %d)", c[0], c[1], got, want, tolerance)
		}
	}
}
