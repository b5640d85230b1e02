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

// Package telemetry provides opt-in Prometheus instrumentation for trunk
// packet processing and epoch ticks. It is designed to be safe to call from
// the packet-processing hot path: when disabled, every exported function is
// a no-op, and no per-flow cardinality is ever registered (only per-trunk,
// per-slice labels, which are bounded at configuration time).
package telemetry

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether instrumentation is active and where /metrics is
// served. MetricsAddr, when non-empty, starts a dedicated HTTP server; leave
// it empty if the host process already exposes promhttp elsewhere.
type Config struct {
	Enabled     bool
	MetricsAddr string
}

var modEnabled atomic.Bool

var (
	packetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ahab_packets_total",
		Help: "Total packets processed, labeled by trunk and slice.",
	}, []string{"trunk", "slice"})

	bytesAdmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ahab_bytes_admitted_total",
		Help: "Total bytes admitted (not dropped), labeled by trunk and slice.",
	}, []string{"trunk", "slice"})

	bytesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ahab_bytes_dropped_total",
		Help: "Total bytes dropped by the per-flow threshold, labeled by trunk and slice.",
	}, []string{"trunk", "slice"})

	dropRatio = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ahab_drop_ratio",
		Help: "Most recently observed per-packet drop ratio (bytes_dropped/size), labeled by trunk and slice.",
	}, []string{"trunk", "slice"})

	sliceThreshold = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ahab_slice_threshold_bytes_per_sec",
		Help: "Current per-flow rate threshold for a slice.",
	}, []string{"trunk", "slice"})

	sliceCapacity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ahab_slice_capacity_bytes_per_sec",
		Help: "Current scaled capacity share assigned to a slice.",
	}, []string{"trunk", "slice"})

	scaledCapacity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ahab_scaled_capacity_bytes_per_sec",
		Help: "Current trunk-wide scaled capacity S.",
	}, []string{"trunk"})

	timestampRegressionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ahab_timestamp_regressions_total",
		Help: "Total out-of-order timestamps clamped rather than rejected, labeled by trunk.",
	}, []string{"trunk"})

	epochDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ahab_epoch_tick_duration_seconds",
		Help:    "Wall-clock duration of a single EndEpoch call.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		packetsTotal,
		bytesAdmittedTotal,
		bytesDroppedTotal,
		dropRatio,
		sliceThreshold,
		sliceCapacity,
		scaledCapacity,
		timestampRegressionsTotal,
		epochDuration,
	)
}

// Enable turns instrumentation on or off and, if MetricsAddr is set, starts
// a dedicated /metrics HTTP server. Safe to call multiple times.
func Enable(cfg Config) {
	modEnabled.Store(cfg.Enabled)
	if cfg.MetricsAddr != "" {
		startMetricsEndpoint(cfg.MetricsAddr)
	}
}

// Enabled reports whether instrumentation is active.
func Enabled() bool { return modEnabled.Load() }

// ObservePacket records one packet's admit/drop outcome for a trunk+slice
// pair. Call from the hot path immediately after Trunk.Process returns.
func ObservePacket(trunk, slice string, size, dropped uint64) {
	if !modEnabled.Load() {
		return
	}
	admitted := size - dropped
	packetsTotal.WithLabelValues(trunk, slice).Inc()
	bytesAdmittedTotal.WithLabelValues(trunk, slice).Add(float64(admitted))
	bytesDroppedTotal.WithLabelValues(trunk, slice).Add(float64(dropped))
	if size > 0 {
		dropRatio.WithLabelValues(trunk, slice).Set(float64(dropped) / float64(size))
	}
}

// ObserveTimestampRegression increments the clamp counter for a trunk.
func ObserveTimestampRegression(trunk string) {
	if !modEnabled.Load() {
		return
	}
	timestampRegressionsTotal.WithLabelValues(trunk).Inc()
}

// ObserveEpoch records per-slice threshold/capacity gauges and the epoch's
// wall-clock duration after an EndEpoch call completes.
func ObserveEpoch(trunk string, sliceNames []string, thresholds, capacities []uint64, scaled uint64, duration time.Duration) {
	if !modEnabled.Load() {
		return
	}
	epochDuration.Observe(duration.Seconds())
	scaledCapacity.WithLabelValues(trunk).Set(float64(scaled))
	for i, name := range sliceNames {
		sliceThreshold.WithLabelValues(trunk, name).Set(float64(thresholds[i]))
		sliceCapacity.WithLabelValues(trunk, name).Set(float64(capacities[i]))
	}
}

// startMetricsEndpoint exposes /metrics on addr in a background goroutine.
// Best-effort: does not deduplicate repeated calls with the same addr.
func startMetricsEndpoint(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
