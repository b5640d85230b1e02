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

// Package ahab implements the per-packet rate-fairness engine: a capped
// virtual trunk divided into weighted slices, each enforcing an
// approximately max-min-fair per-flow rate cap via a time-decaying sketch,
// a per-slice threshold estimator, and a trunk-wide capacity estimator.
package ahab

import "errors"

// Configuration errors are returned by New and are non-recoverable: the
// caller must fix the configuration and reconstruct the Trunk.
var (
	ErrNoSlices            = errors.New("ahab: at least one slice is required")
	ErrWeightsDontSumToOne = errors.New("ahab: slice weights must sum to ~1.0")
	ErrInvalidWeight       = errors.New("ahab: slice weight must be in (0,1]")
	ErrZeroCapacity        = errors.New("ahab: physical_capacity must be > 0")
	ErrInvalidSketchDims   = errors.New("ahab: sketch width and height must be > 0")
	ErrInvalidClamp        = errors.New("ahab: threshold clamp_min must be <= clamp_max")
)
