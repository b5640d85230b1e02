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

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sketch is the LPF-min-sketch of §4.2: W independent hash rows, each H LPF
// cells wide, with every row updated on every call and the minimum across
// rows returned as the conservative rate estimate. Row independence comes
// from xxhash64 salted per row (one row's hash seed offset from the next),
// replacing the CRC16-polynomial-family approach of the original estimator
// with a single fast 64-bit hash reused W times under distinct salts.
type Sketch struct {
	width  int
	height int
	rows   [][]*Cell
	salts  []uint64
}

// NewSketch builds a width x height grid of LPF cells sharing the same time
// constant, scale-down and mode.
func NewSketch(width, height int, tauNanos int64, scaleDown uint) *Sketch {
	if width <= 0 || height <= 0 {
		panic("lpf: sketch width and height must be positive")
	}
	s := &Sketch{width: width, height: height, rows: make([][]*Cell, width), salts: make([]uint64, width)}
	for w := 0; w < width; w++ {
		row := make([]*Cell, height)
		for h := 0; h < height; h++ {
			row[h] = NewCell(tauNanos, scaleDown, RateMode)
		}
		s.rows[w] = row
		// Salts are just distinct multiples of one large odd constant; any fixed, distinct
		// per-row seed yields independent-enough hash families for this
		// sketch's purposes.
		s.salts[w] = 0x9E3779B97F4A7C15 * uint64(w+1)
	}
	return s
}

func (s *Sketch) index(row int, key []byte) int {
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], s.salts[row])
	h := xxhash.New()
	_, _ = h.Write(seedBuf[:])
	_, _ = h.Write(key)
	return int(h.Sum64() % uint64(s.height))
}

// Update inserts (timestamp, size) for flowKey into every row and returns the
// conservative (minimum across rows) rate estimate, along with whether any
// row observed a timestamp regression (§7: clamped and continued, not an
// error). size == 0 is a no-op on sketch state (spec Testable Property 8):
// the caller should short-circuit before calling Update, but Update itself
// still returns the unmodified minimum so it is safe to call unconditionally.
func (s *Sketch) Update(flowKey []byte, timestampNs int64, size uint64) (uint64, bool) {
	if size == 0 {
		return s.Get(flowKey), false
	}
	min := uint64(0)
	anyClamped := false
	for row := 0; row < s.width; row++ {
		idx := s.index(row, flowKey)
		v, clamped := s.rows[row][idx].Update(timestampNs, size)
		if clamped {
			anyClamped = true
		}
		scaled := v >> s.rows[row][idx].scaleDown
		if row == 0 || scaled < min {
			min = scaled
		}
	}
	return min, anyClamped
}

// Get returns the current conservative rate estimate without mutating any
// cell (used for size==0 packets, which must not perturb sketch state).
func (s *Sketch) Get(flowKey []byte) uint64 {
	min := uint64(0)
	for row := 0; row < s.width; row++ {
		idx := s.index(row, flowKey)
		v := s.rows[row][idx].Get()
		if row == 0 || v < min {
			min = v
		}
	}
	return min
}

// Width reports the configured hash-row count.
func (s *Sketch) Width() int { return s.width }

// Height reports the configured per-row cell count.
func (s *Sketch) Height() int { return s.height }
