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

// Package main is the entry point for ahab-controlplane.
//
// ahab-controlplane loads a trunk deployment file (slices, weights, physical
// capacity, sketch/threshold/capacity knobs) and runs the resulting set of
// Trunks to completion: each trunk is assigned to a worker shard that ticks
// its epoch on a fixed interval and pushes the resulting per-slice snapshot
// to the configured sink. It also serves those snapshots over HTTP for
// ad-hoc inspection and dashboards that can't or don't want to consume the
// sink directly.
//
// Usage:
//
//	go run ./cmd/ahab-controlplane -config trunks.yaml -http_addr :8090 -workers 4
//	curl http://localhost:8090/snapshot?trunk=edge-1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ahab/internal/ahab/config"
	"ahab/internal/ahab/export"
	"ahab/internal/ahab/shard"
	"ahab/internal/ahab/telemetry"
	"ahab/pkg/ahab"
)

func main() {
	configPath := flag.String("config", "", "path to the trunk deployment YAML file (required)")
	httpAddr := flag.String("http_addr", ":8090", "HTTP listen address for the snapshot API")
	workers := flag.Int("workers", 4, "number of shard worker goroutines trunks are rendezvous-hashed across")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("ahab-controlplane: -config is required")
	}

	logger := logrus.StandardLogger()

	file, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ahab-controlplane: %v", err)
	}

	if file.Telemetry.Enabled {
		telemetry.Enable(telemetry.Config{Enabled: true, MetricsAddr: file.Telemetry.MetricsAddr})
	}

	sink, err := export.BuildSink(file.Export.Sink, export.Options{
		RedisAddr:    file.Export.RedisAddr,
		KafkaTopic:   file.Export.KafkaTopic,
		KafkaBrokers: file.Export.KafkaBrokers,
	}, nil)
	if err != nil {
		log.Fatalf("ahab-controlplane: building export sink: %v", err)
	}

	workerNames := make([]string, *workers)
	for i := range workerNames {
		workerNames[i] = fmt.Sprintf("worker-%d", i)
	}

	registry := newTrunkRegistry()
	var manager *shard.Manager
	var managerOnce sync.Once

	for _, trunkCfg := range file.Trunks {
		tr, err := ahab.New(trunkCfg.Weights(), trunkCfg.PhysicalCapacity, trunkCfg.ToOptions())
		if err != nil {
			log.Fatalf("ahab-controlplane: building trunk %q: %v", trunkCfg.Name, err)
		}
		registry.add(trunkCfg.Name, trunkCfg.SliceNames(), tr)

		managerOnce.Do(func() {
			interval := trunkCfg.EpochInterval
			manager = shard.NewManager(workerNames, interval, sink, logger)
		})
		manager.AddTrunk(trunkCfg.Name, trunkCfg.SliceNames(), tr)
	}
	if manager == nil {
		log.Fatalf("ahab-controlplane: no trunks configured")
	}
	manager.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", registry.handleSnapshot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpServer := &http.Server{
		Addr:              *httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", *httpAddr).Info("ahab-controlplane listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ahab-controlplane: http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("ahab-controlplane shutting down")
	manager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("ahab-controlplane: http shutdown: %v", err)
	}
}

// trunkEntry pairs a named, running trunk with its declared slice names so
// the HTTP handler can label a snapshot's per-slice arrays.
type trunkEntry struct {
	sliceNames []string
	trunk      *ahab.Trunk
}

// trunkRegistry is the read side of the control plane: a concurrency-safe
// name -> trunk lookup for the snapshot HTTP endpoint.
type trunkRegistry struct {
	mu     sync.RWMutex
	trunks map[string]trunkEntry
}

func newTrunkRegistry() *trunkRegistry {
	return &trunkRegistry{trunks: make(map[string]trunkEntry)}
}

func (r *trunkRegistry) add(name string, sliceNames []string, tr *ahab.Trunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trunks[name] = trunkEntry{sliceNames: sliceNames, trunk: tr}
}

// snapshotResponse is the JSON shape served at /snapshot.
type snapshotResponse struct {
	Trunk                string   `json:"trunk"`
	Slices               []string `json:"slices"`
	PerSliceThreshold     []uint64 `json:"per_slice_threshold"`
	PerSliceCapacity      []uint64 `json:"per_slice_capacity"`
	PerSliceDemandEst     []uint64 `json:"per_slice_demand_estimate"`
	ScaledCapacity        uint64   `json:"scaled_capacity"`
	SaturationCount       uint64   `json:"saturation_count"`
	TimestampRegressions  uint64   `json:"timestamp_regressions"`
}

func (r *trunkRegistry) handleSnapshot(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("trunk")
	if name == "" {
		http.Error(w, "missing required query parameter: trunk", http.StatusBadRequest)
		return
	}
	r.mu.RLock()
	entry, ok := r.trunks[name]
	r.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("unknown trunk %q", name), http.StatusNotFound)
		return
	}

	snap := entry.trunk.Snapshot()
	resp := snapshotResponse{
		Trunk:                name,
		Slices:               entry.sliceNames,
		PerSliceThreshold:    snap.PerSliceThreshold,
		PerSliceCapacity:     snap.PerSliceCapacity,
		PerSliceDemandEst:    snap.PerSliceDemandEstimate,
		ScaledCapacity:       snap.ScaledCapacity,
		SaturationCount:      snap.SaturationCount,
		TimestampRegressions: snap.TimestampRegressions,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
