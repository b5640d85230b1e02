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

// Package export pushes per-epoch trunk snapshots to a control-plane sink:
// a rule-installer, a cache, or an event log, depending on deployment.
//
// Each push carries an EpochSeq so that a retried or late push can be
// recognised: RedisSink ignores any (trunk, slice) push whose epoch_seq does
// not exceed the stored one, while KafkaSink and LogSink emit every push and
// leave de-duplication by EpochSeq to whoever consumes their output.
package export

import "context"

// SliceSnapshot is one slice's per-epoch result, the unit that sinks apply.
type SliceSnapshot struct {
	Trunk     string
	Slice     string
	EpochSeq  uint64
	Threshold uint64
	Capacity  uint64
	DemandEst uint64
}

// Sink is the minimal interface every export adapter implements. Only
// RedisSink makes re-applying the same or an older EpochSeq for a given
// (Trunk,Slice) a no-op; KafkaSink and LogSink emit each push again.
type Sink interface {
	Push(ctx context.Context, entries []SliceSnapshot) error
}
