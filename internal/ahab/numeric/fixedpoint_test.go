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

package numeric

import "testing"

func TestBytesAcceptedFullAdmitWhenLimitExceedsRate(t *testing.T) {
	if got := BytesAccepted(100, 200, 1500); got != 1500 {
		t.Fatalf("got %d want 1500", got)
	}
}

func TestBytesAcceptedScalesDownWhenLimitBelowRate(t *testing.T) {
	// rate=200, limit=100 -> half admitted
	if got := BytesAccepted(200, 100, 1000); got != 500 {
		t.Fatalf("got %d want 500", got)
	}
}

func TestBytesAcceptedZeroRateAdmitsEverything(t *testing.T) {
	if got := BytesAccepted(0, 10, 777); got != 777 {
		t.Fatalf("got %d want 777", got)
	}
}

func TestBytesAcceptedTableHalfRateAdmitsHalf(t *testing.T) {
	// rate=500, limit=250 (limit/rate == 0.5): guards the table-driven path
	// specifically, since the exact-division tests above never exercise
	// DivisionTable at all.
	div := NewDivisionTable(6, 8)
	got := BytesAcceptedTable(div, 500, 250, 1000)
	want := uint64(500)
	diff := int64(got) - int64(want)
	if diff < 0 {
		diff = -diff
	}
	if uint64(diff) > want/10+5 {
		t.Fatalf("BytesAcceptedTable(rate=500,limit=250,size=1000)=%d want~%d", got, want)
	}
}
