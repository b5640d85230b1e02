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

// Package capacity implements the trunk-level capacity estimator of §4.4:
// re-slicing a capped physical trunk across slices by weight, either by
// binary-searching a scaled capacity (oversubscribed) or letting the busiest
// slice grow into spare capacity (speculative, under-subscribed).
package capacity

import "ahab/internal/ahab/numeric"

// Mode selects between the scaled-histogram algorithm and the diagnostic
// fixed-proportion mode.
type Mode int

const (
	// ScaledHistograms is the production mode of §4.4.
	ScaledHistograms Mode = iota
	// Fixed assigns C_i = w_i * P with no rescaling, for diagnostics/testbeds.
	Fixed
)

// weightScale is the fixed-point base for per-slice weights: a weight of
// 1.0 is represented as 1<<weightBits.
const weightBits = 16
const weightScale = uint64(1) << weightBits

// Estimator holds the immutable per-slice weights (as weightScale-fixed
// fractions) and the trunk's physical capacity.
type Estimator struct {
	weights     []uint64 // fixed-point, each in (0, weightScale]
	physical    uint64
	mode        Mode
	speculative bool
}

// NewEstimator converts floating weights (which must sum to ~1.0, each in
// (0,1]) to fixed-point and builds an Estimator for the given physical
// trunk capacity and mode. speculativeDefault controls what happens when the
// trunk is under-subscribed: true lets the busiest slice grow to fill spare
// capacity (§4.4 speculative mode); false instead falls back to the
// non-speculative S = P/min(w_i) scaling the spec calls out for S6.
func NewEstimator(weights []float64, physical uint64, mode Mode, speculativeDefault bool) *Estimator {
	fixed := make([]uint64, len(weights))
	for i, w := range weights {
		v := uint64(w*float64(weightScale) + 0.5)
		if v == 0 {
			v = 1
		}
		fixed[i] = v
	}
	return &Estimator{weights: fixed, physical: physical, mode: mode, speculative: speculativeDefault}
}

// weightedShare computes floor(w_i * S / weightScale).
func weightedShare(wFixed, scaledCapacity uint64) uint64 {
	return (wFixed * scaledCapacity) >> weightBits
}

func minUint64(xs []uint64) uint64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func sumUint64(xs []uint64) uint64 {
	var s uint64
	for _, x := range xs {
		s += x
	}
	return s
}

func minOf(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// EndEpoch runs the epoch-end algorithm of §4.4 given each slice's demand
// read-out. Returns the scaled trunk capacity S, each slice's capacity
// share C_i = w_i*S, and whether speculative (under-subscribed) mode was
// used this epoch.
func (e *Estimator) EndEpoch(demands []uint64) (scaledCapacity uint64, perSlice []uint64, speculative bool) {
	if len(demands) != len(e.weights) {
		panic("capacity: demands length must match configured slice count")
	}
	if e.mode == Fixed {
		perSlice = make([]uint64, len(e.weights))
		for i, w := range e.weights {
			perSlice[i] = (w * e.physical) >> weightBits
		}
		return e.physical, perSlice, false
	}

	total := sumUint64(demands)
	if total >= e.physical {
		scaledCapacity = e.oversubscribedSearch(demands)
		speculative = false
	} else if e.speculative {
		scaledCapacity = e.speculativeScale(demands, total)
		speculative = true
	} else {
		minW := minUint64(e.weights)
		scaledCapacity = (e.physical * weightScale) / minW
		speculative = false
	}

	perSlice = make([]uint64, len(e.weights))
	for i, w := range e.weights {
		perSlice[i] = weightedShare(w, scaledCapacity)
	}
	return scaledCapacity, perSlice, speculative
}

// oversubscribedSearch finds the smallest S in [P, P/min(w_i)] such that
// sum(min(d_i, w_i*S)) == P (approximately, via bounded binary search: the
// smallest S with sum(...) >= P).
func (e *Estimator) oversubscribedSearch(demands []uint64) uint64 {
	minW := minUint64(e.weights)
	// Upper bound: P / min(w_i), in real terms; in fixed point that's
	// P * weightScale / minW.
	upper := (e.physical * weightScale) / minW
	f := func(s uint64) uint64 {
		var total uint64
		for i, w := range e.weights {
			share := weightedShare(w, s)
			total += minOf(demands[i], share)
		}
		return total
	}
	return numeric.BoundedBinarySearch(e.physical, upper, e.physical, f)
}

// speculativeScale implements the under-subscribed branch: the busiest
// slice is allowed to grow to absorb the spare capacity (P - total demand).
func (e *Estimator) speculativeScale(demands []uint64, total uint64) uint64 {
	busiest := 0
	for i, d := range demands {
		if d > demands[busiest] {
			busiest = i
		}
	}
	spare := e.physical - total
	numerator := (demands[busiest] + spare) * weightScale
	return numerator / e.weights[busiest]
}
