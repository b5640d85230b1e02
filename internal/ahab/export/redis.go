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

// RedisEvaler abstracts the minimal surface needed from a Redis client.
// Implementations may wrap github.com/redis/go-redis/v9's Cmdable.Eval.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisSink publishes the latest per-slice snapshot as a Redis hash, keyed
// by trunk+slice, guarded by a monotonic epoch-sequence fence: a push whose
// EpochSeq is not greater than the stored one is dropped rather than
// applied, so an out-of-order retry can never regress a later snapshot.
type RedisSink struct {
	client RedisEvaler
}

// NewRedisSink builds a sink over the given Redis client.
func NewRedisSink(client RedisEvaler) *RedisSink {
	return &RedisSink{client: client}
}

// redisFenceScript applies the hash update only if epoch_seq advances.
const redisFenceScript = `
local key = KEYS[1]
local epochSeq = tonumber(ARGV[1])
local threshold = ARGV[2]
local capacity = ARGV[3]
local demand = ARGV[4]
local last = tonumber(redis.call('HGET', key, 'epoch_seq'))
if last ~= nil and last >= epochSeq then
  return 0
end
redis.call('HSET', key, 'epoch_seq', epochSeq, 'threshold', threshold, 'capacity', capacity, 'demand', demand)
return 1
`

// snapshotKey builds the Redis hash key for one trunk+slice snapshot.
func snapshotKey(trunk, slice string) string {
	return fmt.Sprintf("ahab:snapshot:%s:%s", trunk, slice)
}

// Push writes each slice's snapshot via a single EVAL per entry, so the
// fencing check and the write are atomic with respect to concurrent pushes
// for the same slice.
func (r *RedisSink) Push(ctx context.Context, entries []SliceSnapshot) error {
	for _, e := range entries {
		keys := []string{snapshotKey(e.Trunk, e.Slice)}
		args := []interface{}{e.EpochSeq, e.Threshold, e.Capacity, e.DemandEst}
		if _, err := r.client.Eval(ctx, redisFenceScript, keys, args...); err != nil {
			return fmt.Errorf("redis eval trunk=%s slice=%s: %w", e.Trunk, e.Slice, err)
		}
	}
	return nil
}
