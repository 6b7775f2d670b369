// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the tutor service.
//
// # Description
//
// Metrics cover chat turn throughput and latency, tool call rounds,
// history trimming, and interaction log drops. All metrics are exposed
// via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "hangeul"

// Subsystem for tutor metrics
const tutorSubsystem = "tutor"

// TutorMetrics holds all Prometheus metrics for chat operations.
//
// # Fields
//
//   - TurnsTotal: Counter of chat turns by request type and status.
//   - TurnDurationSeconds: Histogram of full turn duration.
//   - ToolRounds: Histogram of tool call rounds per turn.
//   - TrimsTotal: Counter of history trims.
//   - ChatLogDropsTotal: Counter of interaction log records dropped.
type TutorMetrics struct {
	// TurnsTotal counts chat turns by request type and status.
	// Labels: request_type (text, text_image, image, audio, audio_image),
	// status (success, error)
	TurnsTotal *prometheus.CounterVec

	// TurnDurationSeconds measures full turn latency including retrieval
	// and all model calls.
	// Labels: request_type
	TurnDurationSeconds *prometheus.HistogramVec

	// ToolRounds measures how many tool call rounds a turn needed.
	ToolRounds prometheus.Histogram

	// TrimsTotal counts turns where the history window was trimmed.
	TrimsTotal prometheus.Counter

	// ChatLogDropsTotal counts interaction log records dropped because
	// the writer queue was full.
	ChatLogDropsTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance of TutorMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *TutorMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Call once at application
// startup.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *TutorMetrics {
	DefaultMetrics = &TutorMetrics{
		TurnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: tutorSubsystem,
				Name:      "turns_total",
				Help:      "Total chat turns by request type and status",
			},
			[]string{"request_type", "status"},
		),

		TurnDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: tutorSubsystem,
				Name:      "turn_duration_seconds",
				Help:      "Full chat turn duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"request_type"},
		),

		ToolRounds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: tutorSubsystem,
				Name:      "tool_rounds",
				Help:      "Tool call rounds needed per chat turn",
				Buckets:   []float64{0, 1, 2, 3, 4, 5},
			},
		),

		TrimsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: tutorSubsystem,
				Name:      "trims_total",
				Help:      "Total chat turns where the history was trimmed",
			},
		),

		ChatLogDropsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: tutorSubsystem,
				Name:      "chatlog_drops_total",
				Help:      "Total interaction log records dropped on a full queue",
			},
		),
	}

	return DefaultMetrics
}

// RecordTurn records a completed chat turn.
//
// # Inputs
//
//   - requestType: The request type label value.
//   - success: Whether the turn completed successfully.
//   - seconds: Full turn duration.
func (m *TutorMetrics) RecordTurn(requestType string, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.TurnsTotal.WithLabelValues(requestType, status).Inc()
	m.TurnDurationSeconds.WithLabelValues(requestType).Observe(seconds)
}

// RecordToolRounds records how many tool rounds a turn used.
func (m *TutorMetrics) RecordToolRounds(rounds int) {
	m.ToolRounds.Observe(float64(rounds))
}

// RecordTrim records one trimmed turn.
func (m *TutorMetrics) RecordTrim() {
	m.TrimsTotal.Inc()
}

// RecordChatLogDrop records one dropped interaction log record.
func (m *TutorMetrics) RecordChatLogDrop() {
	m.ChatLogDropsTotal.Inc()
}
