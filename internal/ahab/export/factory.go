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
	"fmt"
)

// Options holds the knobs needed to build any of the supported sinks.
type Options struct {
	RedisAddr    string
	KafkaTopic   string
	KafkaBrokers []string
}

// BuildSink constructs a Sink from a string selector:
//   - "none" or "": a no-op sink (useful for dry runs)
//   - "log": structured logging via logrus, no external dependency
//   - "redis": idempotent, fencing-guarded hash writes
//   - "kafka": append-only event stream (requires a caller-supplied KafkaProducer)
func BuildSink(kind string, opts Options, kafkaProducer KafkaProducer) (Sink, error) {
	switch kind {
	case "", "none":
		return noopSink{}, nil
	case "log":
		return NewLogSink(nil), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("export: redis sink requires RedisAddr")
		}
		return NewRedisSink(NewGoRedisEvaler(opts.RedisAddr)), nil
	case "kafka":
		if kafkaProducer == nil {
			return nil, fmt.Errorf("export: kafka sink requires a KafkaProducer")
		}
		topic := opts.KafkaTopic
		if topic == "" {
			topic = "ahab-snapshots"
		}
		return NewKafkaSink(kafkaProducer, topic), nil
	default:
		return nil, fmt.Errorf("export: unknown sink %q", kind)
	}
}

type noopSink struct{}

func (noopSink) Push(_ context.Context, _ []SliceSnapshot) error {
	return nil
}
