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

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GoRedisEvaler wraps github.com/redis/go-redis/v9 as a RedisEvaler.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler connects to addr (e.g. "127.0.0.1:6379").
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

// LogSink writes each snapshot as a structured log line via logrus. Useful
// as a zero-infrastructure sink (BuildSink's "log" selector).
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink builds a sink over the given logger (nil uses logrus.StandardLogger()).
func NewLogSink(log *logrus.Logger) *LogSink {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Push(ctx context.Context, entries []SliceSnapshot) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	for _, e := range entries {
		s.log.WithFields(logrus.Fields{
			"trunk":     e.Trunk,
			"slice":     e.Slice,
			"epoch_seq": e.EpochSeq,
			"threshold": e.Threshold,
			"capacity":  e.Capacity,
			"demand":    e.DemandEst,
		}).Info("trunk snapshot")
	}
	return nil
}
