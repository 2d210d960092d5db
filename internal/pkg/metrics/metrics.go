package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Orchestrator metrics
	OrchestratorRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeclock_orchestrator_runs_total",
			Help: "Total orchestrator sub-step executions by step and result",
		},
		[]string{"step", "result"},
	)

	OrchestratorRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timeclock_orchestrator_run_duration_seconds",
			Help:    "Duration of orchestrator sub-step executions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	SessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeclock_session_transitions_total",
			Help: "Total session status transitions committed by target status",
		},
		[]string{"to_status"},
	)

	ActiveSessionsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "timeclock_active_sessions",
			Help: "Current number of live sessions by lifecycle status",
		},
		[]string{"status"},
	)

	SessionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeclock_sessions_created_total",
			Help: "Total schedule sessions created",
		},
	)

	SessionsArchivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeclock_sessions_archived_total",
			Help: "Total schedule sessions moved to the archive store",
		},
	)

	// Notification metrics
	NotificationsQueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeclock_notifications_queued_total",
			Help: "Total notifications accepted into the dispatch queue",
		},
	)

	NotificationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeclock_notifications_dropped_total",
			Help: "Total notifications dropped because the dispatch queue was full",
		},
	)

	NotificationDispatchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timeclock_notification_dispatch_failures_total",
			Help: "Total push gateway dispatch failures",
		},
	)
)

// Register registers all metrics with Prometheus
func Register() {
	prometheus.MustRegister(
		OrchestratorRunsTotal,
		OrchestratorRunDuration,
		SessionTransitionsTotal,
		ActiveSessionsByStatus,
		SessionsCreatedTotal,
		SessionsArchivedTotal,
		NotificationsQueuedTotal,
		NotificationsDroppedTotal,
		NotificationDispatchFailuresTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
