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

// Package lpf implements the low-pass-filter register and the LPF-min-sketch
// built from a grid of them.
package lpf

import "math"

// decayTableSize buckets elapsed/tau ratios on a linear scale; beyond the last
// bucket the decay factor is treated as zero (fully decayed).
const decayTableSize = 256

// maxDecayRatio is the elapsed/tau ratio at which exp(-x) is indistinguishable
// from zero at our precision; ratios beyond this saturate to 0.
const maxDecayRatio = 40.0

// decayTable holds exp(-x) for x sampled linearly in [0, maxDecayRatio),
// avoiding a floating-point exp() call on every update. This is the
// table-based approximation the design notes call out as an acceptable
// substitute for a literal float exp, with relative error bounded by the
// bucket width.
var decayTable [decayTableSize + 1]float64

func init() {
	for i := 0; i <= decayTableSize; i++ {
		ratio := float64(i) / float64(decayTableSize) * maxDecayRatio
		decayTable[i] = math.Exp(-ratio)
	}
}

// decayFactor returns an approximation of exp(-elapsedNanos/tauNanos) via
// table lookup with linear interpolation between buckets.
func decayFactor(elapsedNanos, tauNanos int64) float64 {
	if tauNanos <= 0 {
		return 0
	}
	if elapsedNanos <= 0 {
		return 1
	}
	ratio := float64(elapsedNanos) / float64(tauNanos)
	if ratio >= maxDecayRatio {
		return 0
	}
	pos := ratio / maxDecayRatio * float64(decayTableSize)
	lo := int(pos)
	if lo >= decayTableSize {
		return decayTable[decayTableSize]
	}
	frac := pos - float64(lo)
	return decayTable[lo]*(1-frac) + decayTable[lo+1]*frac
}
