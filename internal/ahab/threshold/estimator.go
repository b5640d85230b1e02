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
	"sync/atomic"

	"ahab/internal/ahab/lpf"
	"ahab/internal/ahab/numeric"
)

// Estimator tracks one slice's current threshold, its three candidate
// thresholds and their admitted-bytes LPFs, the slice demand LPF, and the
// running max observed flow rate for the epoch. All mutating methods are
// called only from the trunk's single packet-processing worker (§5); the
// atomic fields exist solely so Snapshot-style readers on another goroutine
// can read without racing the writer.
type Estimator struct {
	generator Generator
	interp    Interpolator

	clampMin uint64
	clampMax uint64

	current atomic.Uint64 // current threshold T

	lo, mid, hi    atomic.Uint64 // candidate thresholds
	lLo, lMid, lHi *lpf.Cell

	demand      *lpf.Cell
	maxFlowRate atomic.Uint64
	packetsSeen atomic.Uint64
}

// NewEstimator constructs an Estimator with an initial threshold and the
// generator/interpolator strategies chosen once at construction.
func NewEstimator(initialT uint64, tauNanos int64, gen Generator, interp Interpolator, clampMin, clampMax uint64) *Estimator {
	e := &Estimator{
		generator: gen,
		interp:    interp,
		clampMin:  clampMin,
		clampMax:  clampMax,
		lLo:       lpf.NewCell(tauNanos, 0, lpf.RateMode),
		lMid:      lpf.NewCell(tauNanos, 0, lpf.RateMode),
		lHi:       lpf.NewCell(tauNanos, 0, lpf.RateMode),
		demand:    lpf.NewCell(tauNanos, 0, lpf.RateMode),
	}
	e.current.Store(clampVal(initialT, clampMin, clampMax))
	lo, mid, hi := gen.Candidates(e.current.Load())
	e.lo.Store(lo)
	e.mid.Store(mid)
	e.hi.Store(hi)
	return e
}

// CurrentThreshold returns the slice's active per-flow rate cap.
func (e *Estimator) CurrentThreshold() uint64 { return e.current.Load() }

// ProcessPacket is the per-packet side update of §4.3: each candidate LPF
// tracks bytes_accepted(rate, candidate, size); the demand LPF tracks size;
// max_flow_rate_in_epoch tracks the running max of rate.
func (e *Estimator) ProcessPacket(timestampNs int64, rate, size uint64) {
	e.packetsSeen.Add(1)
	if size == 0 {
		return
	}
	lo, mid, hi := e.lo.Load(), e.mid.Load(), e.hi.Load()
	e.lLo.Update(timestampNs, numeric.BytesAccepted(rate, lo, size))
	e.lMid.Update(timestampNs, numeric.BytesAccepted(rate, mid, size))
	e.lHi.Update(timestampNs, numeric.BytesAccepted(rate, hi, size))
	e.demand.Update(timestampNs, size)

	for {
		cur := e.maxFlowRate.Load()
		if rate <= cur {
			break
		}
		if e.maxFlowRate.CompareAndSwap(cur, rate) {
			break
		}
	}
}

// DemandEstimate returns the slice's current demand LPF read-out, used by
// the trunk-level capacity estimator.
func (e *Estimator) DemandEstimate() uint64 { return e.demand.Get() }

// MaxFlowRateInEpoch returns the running max flow rate observed this epoch.
func (e *Estimator) MaxFlowRateInEpoch() uint64 { return e.maxFlowRate.Load() }

// EndEpoch runs the epoch-end algorithm of §4.3 steps 1-6: bracket
// selection, interpolation, speculative clamp, bound-clamp, then regenerates
// candidates and resets their LPFs. capacity is this slice's share of the
// (possibly rescaled) trunk capacity for this epoch. speculative indicates
// the trunk is under-subscribed this epoch; totalSliceDemand is the sum of
// every slice's demand read-out, used by the speculative clamp.
//
// If no packets were observed this epoch, the threshold is left unchanged
// (Testable Property 7); the speculative clamp is not applied to it either.
func (e *Estimator) EndEpoch(capacity uint64, speculative bool, totalSliceDemand uint64) uint64 {
	if e.packetsSeen.Load() == 0 {
		e.packetsSeen.Store(0)
		return e.current.Load()
	}
	e.packetsSeen.Store(0)

	cLo, cMid, cHi := e.lLo.Get(), e.lMid.Get(), e.lHi.Get()
	tLo, tMid, tHi := e.lo.Load(), e.mid.Load(), e.hi.Load()

	var next uint64
	switch {
	case capacity <= cLo:
		next = tLo
	case capacity >= cHi:
		next = tHi
	case capacity == cMid:
		next = tMid
	case capacity < cMid:
		next = e.interp.Interpolate(tLo, tMid, cLo, cMid, capacity)
	default:
		next = e.interp.Interpolate(tMid, tHi, cMid, cHi, capacity)
	}

	if speculative {
		maxRate := e.maxFlowRate.Load()
		var slack uint64
		if capacity > totalSliceDemand {
			slack = capacity - totalSliceDemand
		}
		cap := maxRate + slack
		if next > cap {
			next = cap
		}
	}

	next = clampVal(next, e.clampMin, e.clampMax)
	e.current.Store(next)

	lo, mid, hi := e.generator.Candidates(next)
	e.lo.Store(lo)
	e.mid.Store(mid)
	e.hi.Store(hi)
	e.lLo.Reset()
	e.lMid.Reset()
	e.lHi.Reset()
	e.demand.Reset()
	e.maxFlowRate.Store(0)

	return next
}

func clampVal(v, lo, hi uint64) uint64 {
	if lo > 0 && v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
