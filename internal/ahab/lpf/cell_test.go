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

package lpf

import "testing"

func TestCellRateModeAccumulatesWithinEpoch(t *testing.T) {
	c := NewCell(int64(1e9), 0, RateMode)
	c.Update(0, 50)
	v, clamped := c.Update(0, 50)
	if clamped {
		t.Fatal("unexpected clamp on equal timestamps")
	}
	if v != 100 {
		t.Fatalf("got %d want 100 (no decay at zero elapsed)", v)
	}
}

func TestCellRateModeDecaysOverTime(t *testing.T) {
	tau := int64(1e9) // 1 second
	c := NewCell(tau, 0, RateMode)
	c.Update(0, 100)
	// One tau later: contribution should have decayed to ~36.8% of 100.
	v, _ := c.Update(tau, 0)
	if v > 40 || v < 30 {
		t.Fatalf("got %d, want roughly 37 after one tau of decay", v)
	}
}

func TestCellTimestampRegressionClamps(t *testing.T) {
	c := NewCell(int64(1e9), 0, RateMode)
	c.Update(1000, 10)
	_, clamped := c.Update(500, 10)
	if !clamped {
		t.Fatal("expected regression to be clamped")
	}
}

func TestCellScaleDownAppliesOnRead(t *testing.T) {
	c := NewCell(int64(1e9), 4, RateMode)
	c.Update(0, 160)
	if got := c.Get(); got != 10 {
		t.Fatalf("got %d want 10 (160>>4)", got)
	}
}

func TestCellSampleModeSmooths(t *testing.T) {
	c := NewCell(int64(1e9), 0, SampleMode)
	v, _ := c.Update(0, 100)
	if v != 100 {
		t.Fatalf("first sample should set value directly, got %d", v)
	}
}
