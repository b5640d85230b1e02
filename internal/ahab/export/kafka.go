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

package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// KafkaProducer is a minimal abstraction over a Kafka client. Implementations
// should enable an idempotent producer and use (trunk,slice) as the message
// key so per-slice ordering is preserved. A specific Kafka client library is
// intentionally not imported here: the call site supplies one.
type KafkaProducer interface {
	Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// KafkaSink publishes every snapshot as an append-only event; consumers are
// responsible for keeping only the highest EpochSeq seen per (trunk,slice).
type KafkaSink struct {
	producer       KafkaProducer
	topic          string
	defaultTimeout time.Duration
}

// NewKafkaSink builds a sink that publishes to the given topic.
func NewKafkaSink(p KafkaProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic, defaultTimeout: 10 * time.Second}
}

// snapshotEvent is the JSON payload published per slice snapshot.
type snapshotEvent struct {
	Trunk     string `json:"trunk"`
	Slice     string `json:"slice"`
	EpochSeq  uint64 `json:"epoch_seq"`
	Threshold uint64 `json:"threshold"`
	Capacity  uint64 `json:"capacity"`
	DemandEst uint64 `json:"demand_estimate"`
	TsUnixMs  int64  `json:"ts_unix_ms"`
}

// Push publishes one Kafka message per slice snapshot, keyed by trunk:slice.
func (k *KafkaSink) Push(ctx context.Context, entries []SliceSnapshot) error {
	if len(entries) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && k.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.defaultTimeout)
		defer cancel()
	}
	nowMs := time.Now().UnixMilli()
	for _, e := range entries {
		msg := snapshotEvent{
			Trunk:     e.Trunk,
			Slice:     e.Slice,
			EpochSeq:  e.EpochSeq,
			Threshold: e.Threshold,
			Capacity:  e.Capacity,
			DemandEst: e.DemandEst,
			TsUnixMs:  nowMs,
		}
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal kafka message: %w", err)
		}
		key := []byte(fmt.Sprintf("%s:%s", e.Trunk, e.Slice))
		headers := map[string]string{"content-type": "application/json"}
		if err := k.producer.Produce(ctx, k.topic, key, b, headers); err != nil {
			return fmt.Errorf("kafka produce trunk=%s slice=%s: %w", e.Trunk, e.Slice, err)
		}
	}
	return nil
}
