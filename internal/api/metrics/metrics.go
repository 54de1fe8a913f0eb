// Package metrics defines and registers all custom Prometheus metrics for the
// POS portal API. It is the single source of truth for metric names, labels,
// and help strings. Collectors register with the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

// ── Device lifecycle metrics ──────────────────────────────────────────────────

// HeartbeatsTotal counts heartbeat outcomes.
// Label:
//   - result: "applied", "throttled", "rejected" (inactive device), or "lost"
//     (CAS retries exhausted, last write dropped)
var HeartbeatsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "heartbeats_total",
		Help:      "Total number of device heartbeats, labelled by outcome.",
	},
	[]string{"result"},
)

// DeviceTransitionsTotal counts applied lifecycle transitions.
// Label:
//   - action: "activate", "deactivate", "heartbeat", "maintenance", "suspend"
var DeviceTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "device_transitions_total",
		Help:      "Total number of device state transitions applied, by action.",
	},
	[]string{"action"},
)

// CASConflictsTotal counts optimistic-concurrency conflicts on device writes.
// Conflicts are retried internally; this tracks contention, not caller-visible
// failures.
var CASConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "device_cas_conflicts_total",
		Help:      "Total number of version conflicts on device writes, by action.",
	},
	[]string{"action"},
)

// ── Portal metrics ────────────────────────────────────────────────────────────

// PortalRequestsTotal counts portal queries that completed successfully.
// Label:
//   - operation: "menu", "categories", "products", "devices", "search"
var PortalRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portal_requests_total",
		Help:      "Total number of portal queries served, by operation.",
	},
	[]string{"operation"},
)

// ScopeDeniedTotal counts requests rejected during scoping.
// Label:
//   - reason: "authorization", "scope", or "validation"
var ScopeDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scope_denied_total",
		Help:      "Total number of portal requests denied during scoping, by reason.",
	},
	[]string{"reason"},
)

// SearchDuration measures end-to-end product search latency.
var SearchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of portal product searches.",
		Buckets:   prometheus.DefBuckets,
	},
)
