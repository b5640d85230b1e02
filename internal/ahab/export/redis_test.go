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
	"errors"
	"testing"
)

type fakeRedisEvaler struct {
	calls []struct {
		keys []string
		args []interface{}
	}
	returnErr error
}

func (f *fakeRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f.calls = append(f.calls, struct {
		keys []string
		args []interface{}
	}{keys: append([]string{}, keys...), args: append([]interface{}{}, args...)})
	return int64(1), nil
}

func TestRedisSinkPushBuildsExpectedKeys(t *testing.T) {
	fake := &fakeRedisEvaler{}
	s := NewRedisSink(fake)
	entries := []SliceSnapshot{{Trunk: "edge-1", Slice: "video", EpochSeq: 3, Threshold: 100, Capacity: 200, DemandEst: 50}}
	if err := s.Push(context.Background(), entries); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	wantKey := snapshotKey("edge-1", "video")
	if fake.calls[0].keys[0] != wantKey {
		t.Fatalf("key mismatch: got %v want %v", fake.calls[0].keys[0], wantKey)
	}
	if len(fake.calls[0].args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(fake.calls[0].args))
	}
}

func TestRedisSinkPushEmptyIsNoOp(t *testing.T) {
	fake := &fakeRedisEvaler{}
	s := NewRedisSink(fake)
	if err := s.Push(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(fake.calls))
	}
}

func TestRedisSinkPushPropagatesClientError(t *testing.T) {
	fake := &fakeRedisEvaler{returnErr: errors.New("boom")}
	s := NewRedisSink(fake)
	entries := []SliceSnapshot{{Trunk: "t", Slice: "s", EpochSeq: 1}}
	err := s.Push(context.Background(), entries)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestRedisSinkPushContextCanceled(t *testing.T) {
	fake := &fakeRedisEvaler{}
	s := NewRedisSink(fake)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	entries := []SliceSnapshot{{Trunk: "t", Slice: "s", EpochSeq: 1}}
	err := s.Push(ctx, entries)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
