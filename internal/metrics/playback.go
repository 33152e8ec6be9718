// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for the playback engine.
// Label cardinality is bounded: labels carry format tags, backend kinds and
// result classes, never locators or session ids.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoadAttemptsTotal counts source load attempts by format tag and result.
	LoadAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_load_attempts_total",
		Help: "Total number of source load attempts, by format tag and result (ok/error/fallback).",
	}, []string{"tag", "result"})

	// BackendSwapsTotal counts backend teardown/rebuild cycles by target kind.
	BackendSwapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_backend_swaps_total",
		Help: "Total number of backend swaps, by new backend kind.",
	}, []string{"kind"})

	// ReconnectAttemptsTotal counts live stream reconnect attempts by outcome.
	ReconnectAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_reconnect_attempts_total",
		Help: "Total number of stream reconnect attempts, by outcome (scheduled/success/exhausted).",
	}, []string{"outcome"})

	// FallbackSourcesTotal counts whole-source fallback transitions.
	FallbackSourcesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "player_fallback_sources_total",
		Help: "Total number of transitions to a configured fallback source.",
	})

	// CoalescedEventsTotal counts raw events absorbed by shaping, by type.
	CoalescedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_coalesced_events_total",
		Help: "Total number of raw media events absorbed by throttle or debounce shaping, by event type.",
	}, []string{"event"})

	// BufferingSecondsTotal accumulates time spent in buffering brackets.
	BufferingSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "player_buffering_seconds_total",
		Help: "Cumulative seconds spent buffering across all sessions.",
	})

	// PreloadsTotal counts next-item preloads by result.
	PreloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "player_preloads_total",
		Help: "Total number of next-item preload attempts, by result (started/complete/skipped).",
	}, []string{"result"})

	// BackendStatus tracks the current backend status as a one-hot gauge.
	BackendStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "player_backend_status",
		Help: "Current backend status (1 for the active status, 0 otherwise).",
	}, []string{"status"})

	// LoadDurationSeconds observes time from load start to readiness.
	LoadDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "player_load_duration_seconds",
		Help:    "Time from load start to first canplay, by format tag.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"tag"})
)

// RecordLoadAttempt increments the load counter for a tag and result.
func RecordLoadAttempt(tag, result string) {
	LoadAttemptsTotal.WithLabelValues(tag, result).Inc()
}

// RecordBackendSwap increments the swap counter for the new backend kind.
func RecordBackendSwap(kind string) {
	BackendSwapsTotal.WithLabelValues(kind).Inc()
}

// RecordReconnect increments the reconnect counter for an outcome.
func RecordReconnect(outcome string) {
	ReconnectAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordCoalesced increments the coalesced-event counter for an event type.
func RecordCoalesced(event string) {
	CoalescedEventsTotal.WithLabelValues(event).Inc()
}

// AddBufferingSeconds accumulates a completed buffering bracket.
func AddBufferingSeconds(seconds float64) {
	if seconds > 0 {
		BufferingSecondsTotal.Add(seconds)
	}
}

// SetBackendStatus marks one status active and clears the others.
func SetBackendStatus(active string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == active {
			v = 1
		}
		BackendStatus.WithLabelValues(s).Set(v)
	}
}

// ObserveLoadDuration records a load-to-ready latency for a format tag.
func ObserveLoadDuration(tag string, seconds float64) {
	LoadDurationSeconds.WithLabelValues(tag).Observe(seconds)
}
