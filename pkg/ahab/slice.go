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

import "ahab/internal/ahab/threshold"

// SliceConfig is the immutable per-slice configuration: weight and the
// derived scale factor used to up-scale packet sizes before sketch
// insertion (lighter slices see proportionally more pressure at the same
// threshold). Each slice's runtime state holds its own copy of this value,
// and the capacity estimator keeps its own fixed-point copy of the weights;
// none of these copies is mutated after New.
type SliceConfig struct {
	Weight      float64
	ScaleFactor uint64
}

// buildSliceConfigs derives ScaleFactor = max_weight/weight for each slice.
func buildSliceConfigs(weights []float64) []SliceConfig {
	maxWeight := weights[0]
	for _, w := range weights[1:] {
		if w > maxWeight {
			maxWeight = w
		}
	}
	configs := make([]SliceConfig, len(weights))
	for i, w := range weights {
		configs[i] = SliceConfig{
			Weight:      w,
			ScaleFactor: uint64(maxWeight/w + 0.5),
		}
		if configs[i].ScaleFactor == 0 {
			configs[i].ScaleFactor = 1
		}
	}
	return configs
}

// sliceState is one slice's mutable runtime state: its immutable config and
// its threshold estimator (which in turn owns the candidate set, candidate
// LPFs, demand LPF and max-flow-rate tracking described in §3's SliceState
// entity).
type sliceState struct {
	config    SliceConfig
	threshold *threshold.Estimator
}
