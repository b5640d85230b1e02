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

// Package main is the entry point for ahab-sim, a synthetic traffic
// generator and soak tool for a single Trunk.
//
// Overview:
//
//	ahab-sim drives one in-process Trunk with a configurable mix of flows
//	across a fixed number of slices, at a target packet rate, with a mix of
//	"elephant" flows (a handful of flows responsible for most bytes, the
//	case the rate sketch and threshold estimator exist to police) and
//	"mouse" flows (many low-rate flows that should pass essentially
//	untouched). It runs an epoch ticker alongside the packet generator so
//	you can watch thresholds and per-slice capacity converge in real time.
//
// Usage:
//
//	go run ./cmd/ahab-sim -slices 0.5,0.25,0.25 -capacity 100000 \
//	    -qps 50000 -duration 30s -metrics_addr :9090
//	curl http://localhost:9090/metrics
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ahab/internal/ahab/telemetry"
	"ahab/pkg/ahab"
)

func main() {
	sliceWeights := flag.String("slices", "0.5,0.25,0.25", "comma-separated slice weights, must sum to ~1.0")
	capacity := flag.Uint64("capacity", 100_000, "trunk physical capacity in bytes/epoch-tau")
	qps := flag.Int("qps", 20_000, "target packets per second")
	burst := flag.Int("burst", 200, "burst size per generator tick")
	elephants := flag.Int("elephants", 4, "number of high-rate flows per slice")
	elephantShare := flag.Float64("elephant_share", 0.8, "fraction of packets routed to an elephant flow vs a mouse flow")
	mice := flag.Int("mice", 2000, "number of distinct low-rate flows per slice")
	packetSize := flag.Int("packet_size", 1200, "bytes per simulated packet")
	epochInterval := flag.Duration("epoch_interval", 100*time.Millisecond, "epoch tick interval")
	duration := flag.Duration("duration", 30*time.Second, "run duration; 0 for forever")
	metricsAddr := flag.String("metrics_addr", ":9090", "Prometheus /metrics listen address; empty disables")
	trunkName := flag.String("trunk_name", "sim", "label used for this trunk in telemetry")
	flag.Parse()

	weights, err := parseWeights(*sliceWeights)
	if err != nil {
		log.Fatalf("ahab-sim: %v", err)
	}

	opts := ahab.DefaultOptions()
	opts.Sketch.TimeConstant = *epochInterval
	tr, err := ahab.New(weights, *capacity, opts)
	if err != nil {
		log.Fatalf("ahab-sim: building trunk: %v", err)
	}

	if *metricsAddr != "" {
		telemetry.Enable(telemetry.Config{Enabled: true, MetricsAddr: *metricsAddr})
		log.Printf("ahab-sim: metrics at http://%s/metrics", *metricsAddr)
	}

	flowNames := buildFlowNames(len(weights), *elephants, *mice)

	rng := rand.New(rand.NewSource(1))
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		interval := time.Duration(max(1, *burst)) * time.Second / time.Duration(max(1, *qps))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		epochTicker := time.NewTicker(*epochInterval)
		defer epochTicker.Stop()

		var totalPackets, totalDropped uint64
		statsTicker := time.NewTicker(5 * time.Second)
		defer statsTicker.Stop()

		burstLeft := 0
		for {
			select {
			case <-stop:
				return
			case <-epochTicker.C:
				tr.EndEpoch()
			case <-statsTicker.C:
				snap := tr.Snapshot()
				log.Printf("ahab-sim[%s]: packets=%d dropped=%d scaled_capacity=%d thresholds=%v capacities=%v",
					*trunkName, totalPackets, totalDropped, snap.ScaledCapacity, snap.PerSliceThreshold, snap.PerSliceCapacity)
			case <-ticker.C:
				burstLeft += *burst
				for burstLeft > 0 {
					burstLeft--
					sliceID := rng.Intn(len(weights))
					flow := flowNames[sliceID][pickFlowIndex(rng, *elephants, len(flowNames[sliceID]), *elephantShare)]
					dropped := tr.Process(time.Now().UnixNano(), uint64(*packetSize), sliceID, []byte(flow))
					totalPackets++
					totalDropped += dropped
					if telemetry.Enabled() {
						telemetry.ObservePacket(*trunkName, fmt.Sprintf("slice-%d", sliceID), uint64(*packetSize), dropped)
					}
				}
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	var endTimer <-chan time.Time
	if *duration > 0 {
		endTimer = time.After(*duration)
	}
	select {
	case <-sigCh:
	case <-endTimer:
	}
	close(stop)
	<-done
}

// parseWeights splits a comma-separated list of floats.
func parseWeights(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	weights := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing weight %q: %w", p, err)
		}
		weights = append(weights, v)
	}
	return weights, nil
}

// buildFlowNames produces elephants+mice distinct flow identifiers per
// slice, elephants listed first so pickFlowIndex can cheaply bias toward them.
func buildFlowNames(numSlices, elephants, mice int) [][]string {
	names := make([][]string, numSlices)
	for s := 0; s < numSlices; s++ {
		flows := make([]string, 0, elephants+mice)
		for i := 0; i < elephants; i++ {
			flows = append(flows, fmt.Sprintf("slice-%d/elephant-%d", s, i))
		}
		for i := 0; i < mice; i++ {
			flows = append(flows, fmt.Sprintf("slice-%d/mouse-%d", s, i))
		}
		names[s] = flows
	}
	return names
}

// pickFlowIndex returns an index into a slice's flow name list, biased
// toward the first `elephants` entries with probability elephantShare.
func pickFlowIndex(rng *rand.Rand, elephants, total int, elephantShare float64) int {
	if elephants > 0 && rng.Float64() < elephantShare {
		return rng.Intn(elephants)
	}
	if total <= elephants {
		return 0
	}
	return elephants + rng.Intn(total-elephants)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
