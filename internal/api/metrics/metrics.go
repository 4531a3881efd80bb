// Package metrics defines the custom Prometheus metrics of the HealthTrack
// API. Metrics are registered with the default registry on package init via
// promauto and exposed by the echoprometheus handler mounted in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "healthtrack"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login calls.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "conflict", "invalid" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Medication metrics ────────────────────────────────────────────────────────

// MedicationWritesTotal counts successful medication mutations.
// Label:
//   - operation: "create", "update" or "delete"
var MedicationWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "medication_writes_total",
		Help:      "Total number of medication writes, by operation.",
	},
	[]string{"operation"},
)

// ── Health metric metrics ─────────────────────────────────────────────────────

// ReadingsRecordedTotal counts health readings stored.
// Label:
//   - type: metric type (e.g. "heart-rate", "blood-pressure")
var ReadingsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_recorded_total",
		Help:      "Total number of health readings recorded, by metric type.",
	},
	[]string{"type"},
)

// ReadingsRejectedTotal counts readings that failed validation.
var ReadingsRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_rejected_total",
		Help:      "Total number of health readings rejected by validation.",
	},
)

// HistoryBuildDuration measures GET /metrics/history latency, cache included.
var HistoryBuildDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "history_build_duration_seconds",
		Help:      "Duration of metric history requests.",
		Buckets:   prometheus.DefBuckets,
	},
)
