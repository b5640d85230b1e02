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

package ahab

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"ahab/internal/ahab/capacity"
	"ahab/internal/ahab/lpf"
	"ahab/internal/ahab/numeric"
	"ahab/internal/ahab/threshold"
)

// Trunk is the per-packet rate-fairness engine for one physical downlink
// shared by N weighted slices. Per the concurrency model, all Process and
// EndEpoch calls for a given Trunk must come from a single goroutine; only
// Snapshot is safe to call concurrently with them.
type Trunk struct {
	opts     Options
	slices   []sliceState
	sketch   *lpf.Sketch
	capEst   *capacity.Estimator
	physical uint64
	div      *numeric.DivisionTable

	epochInProgress atomic.Bool
	saturations     atomic.Uint64
	regressions     atomic.Uint64
}

// New validates weights/capacity/sketch dimensions and builds a Trunk.
// Configuration errors are non-recoverable and returned immediately; no
// partially-constructed Trunk is ever returned on error.
func New(weights []float64, physicalCapacity uint64, opts Options) (*Trunk, error) {
	if len(weights) == 0 {
		return nil, ErrNoSlices
	}
	if physicalCapacity == 0 {
		return nil, ErrZeroCapacity
	}
	var sum float64
	for _, w := range weights {
		if w <= 0 || w > 1 {
			return nil, ErrInvalidWeight
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 0.01 {
		return nil, ErrWeightsDontSumToOne
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	configs := buildSliceConfigs(weights)
	gen := opts.thresholdGenerator()
	interp := opts.thresholdInterpolator()

	initialThreshold := opts.Threshold.InitialThreshold
	if initialThreshold == 0 {
		initialThreshold = opts.Threshold.ClampMin
	}

	slices := make([]sliceState, len(weights))
	for i, cfg := range configs {
		slices[i] = sliceState{
			config:    cfg,
			threshold: threshold.NewEstimator(initialThreshold, opts.Sketch.TimeConstant.Nanoseconds(), gen, interp, opts.Threshold.ClampMin, opts.Threshold.ClampMax),
		}
	}

	sketch := lpf.NewSketch(opts.Sketch.Width, opts.Sketch.Height, opts.Sketch.TimeConstant.Nanoseconds(), opts.Sketch.ScaleDown)
	capEst := capacity.NewEstimator(weights, physicalCapacity, opts.capacityMode(), opts.Capacity.DefaultToSpeculative)
	ratioBits := opts.Threshold.RatioBits
	if ratioBits == 0 {
		ratioBits = 7
	}
	mantissaBits := opts.Threshold.MantissaBits
	if mantissaBits == 0 {
		mantissaBits = 8
	}

	return &Trunk{
		opts:     opts,
		slices:   slices,
		sketch:   sketch,
		capEst:   capEst,
		physical: physicalCapacity,
		div:      newDivisionTable(ratioBits, mantissaBits),
	}, nil
}

// flowKey builds the sketch's composite key: the slice id folded into the
// caller-supplied flow key, so the same sketch can be shared across all
// slices (§3 ownership: "the rate sketch is shared across all slices").
func flowKey(sliceID int, flow []byte) []byte {
	key := make([]byte, 4+len(flow))
	binary.LittleEndian.PutUint32(key, uint32(sliceID))
	copy(key[4:], flow)
	return key
}

// Process implements the per-packet dispatcher of §4.5: scale up by the
// slice's scale factor, update the sketch, scale back down, compare against
// the slice's threshold, and return the bytes dropped in expectation. size
// == 0 is a no-op on sketch and demand state (Testable Property 8).
func (t *Trunk) Process(timestampNs int64, size uint64, sliceID int, flow []byte) uint64 {
	if sliceID < 0 || sliceID >= len(t.slices) {
		return 0
	}
	sl := &t.slices[sliceID]
	if size == 0 {
		return 0
	}

	key := flowKey(sliceID, flow)
	scaled := size * sl.config.ScaleFactor
	if scaled/sl.config.ScaleFactor != size {
		// Overflow on the scale-up multiply: saturate rather than panic.
		scaled = math.MaxUint64
		t.saturations.Add(1)
	}
	estimateScaled, clamped := t.sketch.Update(key, timestampNs, scaled)
	if clamped {
		t.regressions.Add(1)
	}
	rate := estimateScaled / sl.config.ScaleFactor

	thresh := sl.threshold.CurrentThreshold()
	accepted := numeric.BytesAcceptedTable(t.div, rate, thresh, size)
	if accepted > size {
		accepted = size
	}
	dropped := size - accepted

	sl.threshold.ProcessPacket(timestampNs, rate, size)
	return dropped
}

// EndEpoch runs the epoch driver of §4.6: the capacity estimator recomputes
// each slice's share of the (possibly rescaled) trunk capacity, then every
// slice's threshold estimator recomputes its threshold against that share.
// A second concurrent call while one is in flight is a no-op (§7 epoch-tick
// re-entrancy guard).
func (t *Trunk) EndEpoch() {
	if !t.epochInProgress.CompareAndSwap(false, true) {
		return
	}
	defer t.epochInProgress.Store(false)

	demands := make([]uint64, len(t.slices))
	for i := range t.slices {
		demands[i] = t.slices[i].threshold.DemandEstimate()
	}
	totalDemand := uint64(0)
	for _, d := range demands {
		totalDemand += d
	}

	_, perSlice, speculative := t.capEst.EndEpoch(demands)
	for i := range t.slices {
		t.slices[i].threshold.EndEpoch(perSlice[i], speculative, totalDemand)
	}
}

// Snapshot returns a read-only view of the trunk's current state for
// control-plane exporters. Safe to call from a different goroutine than the
// one driving Process/EndEpoch.
func (t *Trunk) Snapshot() Snapshot {
	thresholds := make([]uint64, len(t.slices))
	demands := make([]uint64, len(t.slices))
	for i := range t.slices {
		thresholds[i] = t.slices[i].threshold.CurrentThreshold()
		demands[i] = t.slices[i].threshold.DemandEstimate()
	}
	scaled, perSlice, _ := t.capEst.EndEpoch(demands)
	return Snapshot{
		PerSliceThreshold:      thresholds,
		PerSliceDemandEstimate: demands,
		PerSliceCapacity:       perSlice,
		ScaledCapacity:         scaled,
		SaturationCount:        t.saturations.Load(),
		TimestampRegressions:   t.regressions.Load(),
	}
}
