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
	"errors"
	"testing"
)

type fakeKafkaProducer struct {
	calls []struct {
		topic string
		key   []byte
		value []byte
	}
	returnErr error
}

func (f *fakeKafkaProducer) Produce(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.calls = append(f.calls, struct {
		topic string
		key   []byte
		value []byte
	}{topic: topic, key: append([]byte{}, key...), value: append([]byte{}, value...)})
	return nil
}

func TestKafkaSinkPublishesOneMessagePerEntry(t *testing.T) {
	fake := &fakeKafkaProducer{}
	s := NewKafkaSink(fake, "ahab-snapshots")
	entries := []SliceSnapshot{
		{Trunk: "t1", Slice: "s1", EpochSeq: 1, Threshold: 10, Capacity: 20, DemandEst: 5},
		{Trunk: "t1", Slice: "s2", EpochSeq: 1, Threshold: 30, Capacity: 40, DemandEst: 15},
	}
	if err := s.Push(context.Background(), entries); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 produced messages, got %d", len(fake.calls))
	}
	if fake.calls[0].topic != "ahab-snapshots" {
		t.Fatalf("unexpected topic: %s", fake.calls[0].topic)
	}
	var decoded snapshotEvent
	if err := json.Unmarshal(fake.calls[0].value, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Trunk != "t1" || decoded.Slice != "s1" || decoded.Threshold != 10 {
		t.Fatalf("unexpected decoded payload: %+v", decoded)
	}
}

func TestKafkaSinkPushEmptyIsNoOp(t *testing.T) {
	fake := &fakeKafkaProducer{}
	s := NewKafkaSink(fake, "topic")
	if err := s.Push(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no calls")
	}
}

func TestKafkaSinkPropagatesProducerError(t *testing.T) {
	fake := &fakeKafkaProducer{returnErr: errors.New("broker down")}
	s := NewKafkaSink(fake, "topic")
	entries := []SliceSnapshot{{Trunk: "t", Slice: "s", EpochSeq: 1}}
	if err := s.Push(context.Background(), entries); err == nil {
		t.Fatalf("expected an error")
	}
}
