// Package metrics defines the custom Prometheus metrics of the dispatch core.
// It is the single source of truth for metric names, labels and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// ── Location metrics ──────────────────────────────────────────────────────────

// FixRequestsTotal counts fix requests by outcome.
// Label:
//   - outcome: "immediate", "refined", "degraded", "timed_out", "cancelled" or "error"
var FixRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fix_requests_total",
		Help:      "Total number of position fix requests, by outcome.",
	},
	[]string{"outcome"},
)

// FixAccuracyMeters observes the reported accuracy of produced fixes.
var FixAccuracyMeters = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fix_accuracy_meters",
		Help:      "Accuracy radius of produced position fixes.",
		Buckets:   []float64{2, 5, 8, 10, 15, 20, 30, 50, 100, 250},
	},
)

// FixSamplesUsed observes how many samples went into a fix.
var FixSamplesUsed = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fix_samples_used",
		Help:      "Number of samples averaged into a position fix.",
		Buckets:   prometheus.LinearBuckets(1, 1, 8),
	},
)

// FixDuration measures the wall time of a fix request.
var FixDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fix_duration_seconds",
		Help:      "Duration of position fix acquisition.",
		Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 15, 20, 25, 30},
	},
)

// ── Emergency metrics ─────────────────────────────────────────────────────────

// EmergenciesCreatedTotal counts new emergencies.
// Label:
//   - priority: "HIGH", "MEDIUM" or "LOW"
var EmergenciesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emergencies_created_total",
		Help:      "Total number of emergencies created, by priority.",
	},
	[]string{"priority"},
)

// TransitionsTotal counts committed lifecycle transitions.
// Label:
//   - to: the status the emergency moved to
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of committed emergency status transitions.",
	},
	[]string{"to"},
)

// AssignmentsTotal counts assignment attempts.
// Label:
//   - result: "assigned", "not_pending", "unit_unavailable", "not_found", "cancelled" or "error"
var AssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignments_total",
		Help:      "Total number of unit assignment attempts, by result.",
	},
	[]string{"result"},
)

// EtaMinutes observes declared arrival estimates.
var EtaMinutes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "eta_minutes",
		Help:      "Dispatcher-declared arrival estimates in minutes.",
		Buckets:   []float64{5, 10, 15, 20, 30, 45, 60, 90, 120},
	},
)

// ── Event fan-out metrics ─────────────────────────────────────────────────────

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of dispatch events pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// EventsDeliveredTotal counts sink deliveries.
// Labels:
//   - sink: the sink name (e.g. "mongo_audit", "redis_pubsub")
//   - result: "ok" or "error"
var EventsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_delivered_total",
		Help:      "Total number of dispatch event deliveries to sinks.",
	},
	[]string{"sink", "result"},
)

// EventsDroppedTotal counts events discarded because the dispatcher was stopped.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of dispatch events dropped after shutdown.",
	},
)
