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

package threshold

import (
	"testing"

	"ahab/internal/ahab/numeric"
)

func TestExactInterpolatorWithinBracket(t *testing.T) {
	got := ExactInterpolator{}.Interpolate(20, 40, 380, 590, 480)
	if got < 28 || got > 30 {
		t.Fatalf("got %d, want ~29", got)
	}
}

func TestExactInterpolatorZeroDenominatorReturnsLowEnd(t *testing.T) {
	got := ExactInterpolator{}.Interpolate(20, 40, 500, 500, 480)
	if got != 20 {
		t.Fatalf("got %d want t_a=20 on zero-denominator guard", got)
	}
}

func TestTableInterpolatorApproximatesExact(t *testing.T) {
	div := numeric.NewDivisionTable(6, 8)
	exact := ExactInterpolator{}.Interpolate(20, 40, 380, 590, 480)
	table := TableInterpolator{Div: div}.Interpolate(20, 40, 380, 590, 480)
	diff := int64(exact) - int64(table)
	if diff < 0 {
		diff = -diff
	}
	if diff > 3 {
		t.Fatalf("table interpolator diverges too much from exact: exact=%d table=%d", exact, table)
	}
}

func TestBracketCorrectness(t *testing.T) {
	// Property 5: if C is within [c_lo, c_hi], interpolated T_new lies in [t_lo, t_hi].
	tLo, tHi := uint64(20), uint64(50)
	got := ExactInterpolator{}.Interpolate(tLo, tHi, 100, 300, 200)
	if got < tLo || got > tHi {
		t.Fatalf("interpolated T_new=%d outside [t_lo,t_hi]=[%d,%d]", got, tLo, tHi)
	}
}
