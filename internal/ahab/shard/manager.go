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

// Package shard assigns trunks to a small, fixed pool of single-writer
// worker goroutines via rendezvous (highest-random-weight) hashing, so that
// adding or removing a worker reshuffles the minimum possible number of
// trunk assignments, and drives each worker's ticker-based epoch tick.
package shard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
	"github.com/sirupsen/logrus"

	"ahab/internal/ahab/export"
	"ahab/internal/ahab/telemetry"
	"ahab/pkg/ahab"
)

// Trunk is the subset of *ahab.Trunk's surface a worker needs. Exists so
// tests can substitute a fake.
type Trunk interface {
	EndEpoch()
	Snapshot() ahab.Snapshot
}

// entry binds a named trunk to its slice names (declared order must match
// Snapshot's per-slice slices) and its worker-local epoch sequence counter.
type entry struct {
	name            string
	sliceNames      []string
	trunk           Trunk
	epochSeq        uint64
	lastRegressions uint64
}

// Manager owns a fixed pool of workers, each single-threaded over the set of
// trunks rendezvous-hashing assigns to it. Only one worker ever ticks a
// given trunk, honoring the trunk's single-writer concurrency model.
type Manager struct {
	interval time.Duration
	sink     export.Sink
	logger   *logrus.Logger

	mu      sync.Mutex
	hash    *rendezvous.Rendezvous
	workers map[string]*worker
	entries map[string]*entry // trunk name -> entry

	stopped atomic.Bool
}

type worker struct {
	name     string
	manager  *Manager
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewManager builds a Manager with workerNames workers, each ticking every
// interval. sink receives per-epoch snapshots after every trunk's EndEpoch.
func NewManager(workerNames []string, interval time.Duration, sink export.Sink, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	names := append([]string{}, workerNames...)
	m := &Manager{
		interval: interval,
		sink:     sink,
		logger:   logger,
		hash:     rendezvous.New(names, xxhash.Sum64String),
		workers:  make(map[string]*worker, len(names)),
		entries:  make(map[string]*entry),
	}
	for _, name := range names {
		m.workers[name] = &worker{name: name, manager: m, stopChan: make(chan struct{})}
	}
	return m
}

// AddTrunk registers a trunk under the given name and slice names (in the
// same order Trunk.Snapshot reports them), assigning it to a worker via
// rendezvous hashing.
func (m *Manager) AddTrunk(name string, sliceNames []string, tr Trunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = &entry{name: name, sliceNames: sliceNames, trunk: tr}
}

// RemoveTrunk unregisters a trunk; its next scheduled tick is skipped.
func (m *Manager) RemoveTrunk(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, name)
}

// workerFor returns which worker currently owns a trunk name.
func (m *Manager) workerFor(trunkName string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hash.Lookup(trunkName)
}

// Start launches every worker's ticker loop.
func (m *Manager) Start() {
	m.logger.Info("shard manager starting workers")
	for _, w := range m.workers {
		w.wg.Add(1)
		go func(w *worker) {
			defer w.wg.Done()
			w.run()
		}(w)
	}
}

// Stop gracefully stops every worker, waiting for in-flight ticks to finish.
func (m *Manager) Stop() {
	if !m.stopped.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("shard manager stopping workers")
	for _, w := range m.workers {
		close(w.stopChan)
	}
	for _, w := range m.workers {
		w.wg.Wait()
	}
}

func (w *worker) run() {
	ticker := time.NewTicker(w.manager.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.stopChan:
			return
		}
	}
}

// tick ends the epoch for every trunk currently assigned to this worker and
// pushes the resulting snapshots to the manager's sink.
func (w *worker) tick() {
	w.manager.mu.Lock()
	var mine []*entry
	for name, e := range w.manager.entries {
		if w.manager.hash.Lookup(name) == w.name {
			mine = append(mine, e)
		}
	}
	w.manager.mu.Unlock()

	var batch []export.SliceSnapshot
	for _, e := range mine {
		epochStart := time.Now()
		e.trunk.EndEpoch()
		snap := e.trunk.Snapshot()
		epochElapsed := time.Since(epochStart)
		e.epochSeq++

		if telemetry.Enabled() {
			telemetry.ObserveEpoch(e.name, e.sliceNames, snap.PerSliceThreshold, snap.PerSliceCapacity, snap.ScaledCapacity, epochElapsed)
			for ; e.lastRegressions < snap.TimestampRegressions; e.lastRegressions++ {
				telemetry.ObserveTimestampRegression(e.name)
			}
		}

		for i, sliceName := range e.sliceNames {
			if i >= len(snap.PerSliceThreshold) {
				break
			}
			batch = append(batch, export.SliceSnapshot{
				Trunk:     e.name,
				Slice:     sliceName,
				EpochSeq:  e.epochSeq,
				Threshold: snap.PerSliceThreshold[i],
				Capacity:  snap.PerSliceCapacity[i],
				DemandEst: snap.PerSliceDemandEstimate[i],
			})
		}
	}
	if len(batch) == 0 || w.manager.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.manager.interval)
	defer cancel()
	if err := w.manager.sink.Push(ctx, batch); err != nil {
		w.manager.logger.WithError(err).WithField("worker", w.name).Warn("failed to push trunk snapshots")
	}
}

// String is used in log fields and error messages.
func (m *Manager) String() string {
	return fmt.Sprintf("shard.Manager{workers=%d, trunks=%d}", len(m.workers), len(m.entries))
}
