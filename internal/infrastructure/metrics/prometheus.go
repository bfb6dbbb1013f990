// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aora"

var (
	// RemoteOperationsTotal tracks calls into the remote access layer.
	// Labels:
	//   - operation: create_user, sign_in, get_all_posts, save_video, ...
	//   - status: success, error
	RemoteOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_operations_total",
			Help:      "Total number of remote access layer operations",
		},
		[]string{"operation", "status"},
	)

	// SaveToggleConflictsTotal counts version conflicts hit while toggling a saved video.
	SaveToggleConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_toggle_conflicts_total",
			Help:      "Total number of version conflicts while toggling saved videos",
		},
	)

	// BestEffortFailuresTotal counts swallowed failures of best-effort operations.
	// Labels:
	//   - operation: sign_out, check_for_updates, publish_event
	BestEffortFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "best_effort_failures_total",
			Help:      "Total number of swallowed best-effort failures",
		},
		[]string{"operation"},
	)

	// CacheOperationsTotal tracks cache operations (get, set, delete).
	// Labels:
	//   - operation: get, set, delete
	//   - status: hit, miss, success, error
	//   - cache_type: redis
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// DBQueriesTotal tracks database queries.
	// Labels:
	//   - query_type: select, insert, update, delete
	//   - table: documents, accounts, sessions
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Total number of database queries",
		},
		[]string{"query_type", "table"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// ActivityEventsTotal counts activity events handled by the worker.
	ActivityEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_total",
			Help:      "Total number of consumed activity events",
		},
		[]string{"type"},
	)

	// HTTPRequestsTotal counts API requests by route pattern and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPRequestDuration measures API latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPPanicsTotal counts handler panics caught by the recoverer.
	HTTPPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Total number of recovered handler panics",
		},
	)
)

// Operation status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet    = "get"
	CacheOpSet    = "set"
	CacheOpDelete = "delete"
)

// Cache type constants.
const (
	CacheTypeRedis = "redis"
)

// DB query type constants.
const (
	DBQuerySelect = "select"
	DBQueryInsert = "insert"
	DBQueryUpdate = "update"
	DBQueryDelete = "delete"
)

// Table name constants.
const (
	TableDocuments = "documents"
	TableAccounts  = "accounts"
	TableSessions  = "sessions"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// ObserveRemote records the outcome of a remote access layer operation.
func ObserveRemote(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	RemoteOperationsTotal.WithLabelValues(operation, status).Inc()
}
