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
	"time"

	"ahab/internal/ahab/capacity"
	"ahab/internal/ahab/threshold"
)

// CandidateGenerator selects the threshold candidate-spacing strategy.
type CandidateGenerator int

const (
	PowerTwoJump CandidateGenerator = iota
	RatioThree
	RatioFive
)

// Interpolator selects how a new threshold is computed within a bracket.
type Interpolator int

const (
	ExactInterpolator Interpolator = iota
	TableBasedInterpolator
)

// CapacityMode selects the trunk capacity estimator's algorithm.
type CapacityMode int

const (
	ScaledHistograms CapacityMode = iota
	FixedCapacity
)

// SketchOptions configures the LPF-min-sketch.
type SketchOptions struct {
	Width        int           // W in [2,8]
	Height       int           // H, power of two
	TimeConstant time.Duration // tau
	ScaleDown    uint          // right-shift applied on read, in [0,16]
}

// ThresholdOptions configures the per-slice threshold estimator.
type ThresholdOptions struct {
	CandidateGenerator CandidateGenerator
	Interpolator       Interpolator
	RatioBits          uint // table interpolator precision, default 7
	MantissaBits       uint // table interpolator mantissa width, default 8
	InitialThreshold   uint64
	ClampMin           uint64
	ClampMax           uint64
}

// CapacityOptions configures the trunk capacity estimator.
type CapacityOptions struct {
	Mode                 CapacityMode
	DefaultToSpeculative bool
}

// Options bundles every deployment-time configuration knob enumerated in
// the external-interfaces section: sketch parameters, threshold strategy,
// and capacity strategy. Zero-value Options is not valid; use DefaultOptions
// as a starting point.
type Options struct {
	Sketch    SketchOptions
	Threshold ThresholdOptions
	Capacity  CapacityOptions
}

// DefaultOptions returns a reasonable configuration: a 3x2048 sketch with a
// 100ms time constant, power-two-jump candidates with exact interpolation,
// and speculative scaled-histogram capacity.
func DefaultOptions() Options {
	return Options{
		Sketch: SketchOptions{
			Width:        3,
			Height:       2048,
			TimeConstant: 100 * time.Millisecond,
			ScaleDown:    0,
		},
		Threshold: ThresholdOptions{
			CandidateGenerator: PowerTwoJump,
			Interpolator:       ExactInterpolator,
			RatioBits:          7,
			MantissaBits:       8,
			InitialThreshold:   1 << 16,
			ClampMin:           8,
			ClampMax:           1 << 30,
		},
		Capacity: CapacityOptions{
			Mode:                 ScaledHistograms,
			DefaultToSpeculative: true,
		},
	}
}

func (o Options) validate() error {
	if o.Sketch.Width <= 0 || o.Sketch.Height <= 0 {
		return ErrInvalidSketchDims
	}
	if o.Threshold.ClampMin > o.Threshold.ClampMax {
		return ErrInvalidClamp
	}
	return nil
}

func (o Options) thresholdGenerator() threshold.Generator {
	switch o.Threshold.CandidateGenerator {
	case RatioThree:
		return threshold.RatioThree{}
	case RatioFive:
		return threshold.RatioFive{}
	default:
		return threshold.PowerTwoJump{}
	}
}

func (o Options) thresholdInterpolator() threshold.Interpolator {
	switch o.Threshold.Interpolator {
	case TableBasedInterpolator:
		ratioBits := o.Threshold.RatioBits
		if ratioBits == 0 {
			ratioBits = 7
		}
		mantissaBits := o.Threshold.MantissaBits
		if mantissaBits == 0 {
			mantissaBits = 8
		}
		return threshold.TableInterpolator{Div: newDivisionTable(ratioBits, mantissaBits)}
	default:
		return threshold.ExactInterpolator{}
	}
}

func (o Options) capacityMode() capacity.Mode {
	if o.Capacity.Mode == FixedCapacity {
		return capacity.Fixed
	}
	return capacity.ScaledHistograms
}
