// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package metrics provides Prometheus instrumentation for the DAAP server:
// request throughput and latency, session lifecycle, long-poll waiters,
// media streams, the library revision, and response-cache efficiency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daap_requests_total",
			Help: "Total number of DAAP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daap_request_duration_seconds",
			Help:    "DAAP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daap_active_requests",
			Help: "Current number of in-flight DAAP requests",
		},
	)

	// Sessions and the update protocol.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daap_sessions_created_total",
			Help: "Total number of sessions allocated",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daap_active_sessions",
			Help: "Current number of live sessions",
		},
	)

	UpdateWaiters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daap_update_waiters",
			Help: "Current number of long-poll /update requests parked",
		},
	)

	Updates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daap_updates_total",
			Help: "Total number of library revision advances",
		},
	)

	LibraryRevision = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daap_library_revision",
			Help: "Current library revision",
		},
	)

	// Media.
	StreamsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daap_streams_started_total",
			Help: "Total number of media and artwork streams opened",
		},
		[]string{"kind"}, // "item", "artwork"
	)

	BytesStreamed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daap_bytes_streamed_total",
			Help: "Total media bytes written to clients",
		},
	)

	// Response cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daap_response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daap_response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daap_response_cache_entries",
			Help: "Current number of cached responses",
		},
	)
)

// RecordRequest records one finished request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		ActiveRequests.Inc()
	} else {
		ActiveRequests.Dec()
	}
}
