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

import "testing"

func TestCandidateMonotonicity(t *testing.T) {
	gens := []Generator{PowerTwoJump{}, RatioThree{}, RatioFive{}}
	for _, g := range gens {
		lo, mid, hi := g.Candidates(1000)
		if !(lo < mid && mid < hi) {
			t.Errorf("%T: candidates not strictly increasing: lo=%d mid=%d hi=%d", g, lo, mid, hi)
		}
	}
}

func TestRatioThreeExactHalfAndDouble(t *testing.T) {
	lo, mid, hi := RatioThree{}.Candidates(100)
	if lo != 50 || mid != 100 || hi != 200 {
		t.Fatalf("got (%d,%d,%d) want (50,100,200)", lo, mid, hi)
	}
}

func TestPowerTwoJumpSmallThresholdStaysStrictlyIncreasing(t *testing.T) {
	// For T<=2, k<=1 and a power-of-two step would otherwise degenerate
	// to 0, colliding a candidate with mid whenever clamp_min is configured
	// below the default of 8.
	for _, tVal := range []uint64{1, 2, 3} {
		lo, mid, hi := PowerTwoJump{}.Candidates(tVal)
		if !(lo < mid && mid < hi) {
			t.Errorf("T=%d: candidates not strictly increasing: lo=%d mid=%d hi=%d", tVal, lo, mid, hi)
		}
	}
}

func TestPowerTwoJumpApproximatesSpecRatios(t *testing.T) {
	lo, mid, hi := PowerTwoJump{}.Candidates(1024)
	if mid != 1024 {
		t.Fatalf("mid should equal T, got %d", mid)
	}
	if lo > 600 || lo < 450 {
		t.Errorf("lo=%d, want roughly T/2=512", lo)
	}
	if hi < 1200 || hi > 1400 {
		t.Errorf("hi=%d, want roughly 1.25T=1280", hi)
	}
}
