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

// Package config loads trunk deployment configuration from YAML, with
// strict unknown-field rejection so a typo'd knob fails at load time rather
// than silently falling back to a zero value.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ahab/pkg/ahab"
)

// Slice is one weighted slice's deployment-time configuration.
type Slice struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Sketch mirrors pkg/ahab.SketchOptions in YAML-friendly form.
type Sketch struct {
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	TimeConstant time.Duration `yaml:"time_constant"`
	ScaleDown    uint          `yaml:"scale_down"`
}

// Threshold mirrors pkg/ahab.ThresholdOptions in YAML-friendly form.
type Threshold struct {
	CandidateGenerator string `yaml:"candidate_generator"` // power_two_jump | ratio_three | ratio_five
	Interpolator       string `yaml:"interpolator"`        // exact | table
	RatioBits          uint   `yaml:"ratio_bits"`
	MantissaBits       uint   `yaml:"mantissa_bits"`
	InitialThreshold   uint64 `yaml:"initial_threshold"`
	ClampMin           uint64 `yaml:"clamp_min"`
	ClampMax           uint64 `yaml:"clamp_max"`
}

// Capacity mirrors pkg/ahab.CapacityOptions in YAML-friendly form.
type Capacity struct {
	Mode                 string `yaml:"mode"` // scaled_histograms | fixed
	DefaultToSpeculative *bool  `yaml:"default_to_speculative"`
}

// Telemetry configures Prometheus instrumentation for the trunk.
type Telemetry struct {
	Enabled     bool   `yaml:"enabled"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Export configures where epoch snapshots are pushed.
type Export struct {
	Sink          string        `yaml:"sink"` // none | log | redis | kafka
	RedisAddr     string        `yaml:"redis_addr"`
	KafkaBrokers  []string      `yaml:"kafka_brokers"`
	KafkaTopic    string        `yaml:"kafka_topic"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Trunk is one trunk's full deployment configuration.
type Trunk struct {
	Name             string        `yaml:"name"`
	PhysicalCapacity uint64        `yaml:"physical_capacity"`
	Slices           []Slice       `yaml:"slices"`
	Sketch           Sketch        `yaml:"sketch"`
	Threshold        Threshold     `yaml:"threshold"`
	Capacity         Capacity      `yaml:"capacity"`
	EpochInterval    time.Duration `yaml:"epoch_interval"`
}

// File is the top-level YAML document: a telemetry/export section shared
// across trunks, plus one entry per trunk.
type File struct {
	Telemetry Telemetry `yaml:"telemetry"`
	Export    Export    `yaml:"export"`
	Trunks    []Trunk   `yaml:"trunks"`
}

// Load reads and strictly decodes a configuration file: unknown keys are a
// load-time error rather than a silently ignored typo.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse strictly decodes raw YAML bytes into a File.
func Parse(data []byte) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	if len(f.Trunks) == 0 {
		return nil, fmt.Errorf("config: at least one trunk is required")
	}
	for i, tr := range f.Trunks {
		if len(tr.Slices) == 0 {
			return nil, fmt.Errorf("config: trunk %q has no slices", tr.Name)
		}
		if tr.PhysicalCapacity == 0 {
			return nil, fmt.Errorf("config: trunk %q has zero physical_capacity", tr.Name)
		}
		if tr.EpochInterval <= 0 {
			f.Trunks[i].EpochInterval = 100 * time.Millisecond
		}
	}
	return &f, nil
}

// Weights extracts this trunk's slice weights in declared order, for
// passing to ahab.New.
func (t Trunk) Weights() []float64 {
	ws := make([]float64, len(t.Slices))
	for i, s := range t.Slices {
		ws[i] = s.Weight
	}
	return ws
}

// SliceNames extracts this trunk's slice names in declared order, for
// telemetry and export labeling.
func (t Trunk) SliceNames() []string {
	names := make([]string, len(t.Slices))
	for i, s := range t.Slices {
		names[i] = s.Name
	}
	return names
}

// ToOptions converts the YAML-friendly Sketch/Threshold/Capacity sections
// into ahab.Options, defaulting generator/interpolator/mode strings that are
// empty or unrecognized to the same defaults as ahab.DefaultOptions.
func (t Trunk) ToOptions() ahab.Options {
	opts := ahab.DefaultOptions()

	if t.Sketch.Width > 0 {
		opts.Sketch.Width = t.Sketch.Width
	}
	if t.Sketch.Height > 0 {
		opts.Sketch.Height = t.Sketch.Height
	}
	if t.Sketch.TimeConstant > 0 {
		opts.Sketch.TimeConstant = t.Sketch.TimeConstant
	}
	opts.Sketch.ScaleDown = t.Sketch.ScaleDown

	switch t.Threshold.CandidateGenerator {
	case "ratio_three":
		opts.Threshold.CandidateGenerator = ahab.RatioThree
	case "ratio_five":
		opts.Threshold.CandidateGenerator = ahab.RatioFive
	case "power_two_jump", "":
		opts.Threshold.CandidateGenerator = ahab.PowerTwoJump
	}
	switch t.Threshold.Interpolator {
	case "table":
		opts.Threshold.Interpolator = ahab.TableBasedInterpolator
	case "exact", "":
		opts.Threshold.Interpolator = ahab.ExactInterpolator
	}
	if t.Threshold.RatioBits > 0 {
		opts.Threshold.RatioBits = t.Threshold.RatioBits
	}
	if t.Threshold.MantissaBits > 0 {
		opts.Threshold.MantissaBits = t.Threshold.MantissaBits
	}
	if t.Threshold.InitialThreshold > 0 {
		opts.Threshold.InitialThreshold = t.Threshold.InitialThreshold
	}
	if t.Threshold.ClampMin > 0 {
		opts.Threshold.ClampMin = t.Threshold.ClampMin
	}
	if t.Threshold.ClampMax > 0 {
		opts.Threshold.ClampMax = t.Threshold.ClampMax
	}

	switch t.Capacity.Mode {
	case "fixed":
		opts.Capacity.Mode = ahab.FixedCapacity
	case "scaled_histograms", "":
		opts.Capacity.Mode = ahab.ScaledHistograms
	}
	if t.Capacity.DefaultToSpeculative != nil {
		opts.Capacity.DefaultToSpeculative = *t.Capacity.DefaultToSpeculative
	}

	return opts
}
