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

// Snapshot is the read-only view exposed to control-plane exporters
// (§6 Trunk::snapshot). It is safe to call from a goroutine other than the
// trunk's packet-processing worker.
type Snapshot struct {
	PerSliceThreshold      []uint64
	PerSliceDemandEstimate []uint64
	PerSliceCapacity       []uint64
	ScaledCapacity         uint64
	SaturationCount        uint64
	TimestampRegressions   uint64
}
