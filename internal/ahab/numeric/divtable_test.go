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

import (
	"math"
	"testing"
)

func TestDivisionTableApproximatesRatio(t *testing.T) {
	div := NewDivisionTable(6, 8)
	cases := []struct{ num, den uint64 }{
		{50, 100},
		{1, 2},
		{999, 1000},
		{1, 1000000},
	}
	for _, c := range cases {
		mant, exp := div.DivideScaled(c.num, c.den)
		got := ScaleByExponent(1<<20, mant, exp)
		want := uint64(float64(1<<20) * float64(c.num) / float64(c.den))
		diff := int64(got) - int64(want)
		if diff < 0 {
			diff = -diff
		}
		tolerance := want/20 + 2 // ~5% relative tolerance plus rounding slack
		if uint64(diff) > tolerance {
			t.Errorf("Divide(%d,%d) scaled=%d want~%d (diff %d > tol %d)", c.num, c.den, got, want, diff, tolerance)
		}
	}
}

func TestBytesAcceptedTableMatchesExact(t *testing.T) {
	div := NewDivisionTable(6, 8)
	cases := []struct{ rate, limit, size uint64 }{
		{100, 50, 1000},
		{1000, 999, 1000},
		{500, 500, 1000},
	}
	for _, c := range cases {
		exact := BytesAccepted(c.rate, c.limit, c.size)
		approx := BytesAcceptedTable(div, c.rate, c.limit, c.size)
		diff := int64(exact) - int64(approx)
		if diff < 0 {
			diff = -diff
		}
		if uint64(diff) > exact/10+5 {
			t.Errorf("rate=%d limit=%d size=%d: exact=%d approx=%d diverge too much", c.rate, c.limit, c.size, exact, approx)
		}
	}
}

func TestDivideByZeroSaturates(t *testing.T) {
	div := NewDivisionTable(5, 8)
	if got := div.Divide(10, 0); got != math.MaxUint64 {
		t.Fatalf("Divide by zero should saturate, got %d", got)
	}
}
