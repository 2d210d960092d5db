package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/company"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/employee"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/jobsite"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/location"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/schedule"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/cron"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/metrics"
)

// Config holds the orchestrator tuning knobs that are not per-company policy.
type Config struct {
	SessionLookahead    time.Duration // default 10 minutes
	HealthCheckInterval time.Duration // default 5 minutes
	ArchiveRetention    time.Duration // default 30 days
	ArchiveBatchSize    int           // default 500
}

func (c *Config) applyDefaults() {
	if c.SessionLookahead == 0 {
		c.SessionLookahead = 10 * time.Minute
	}
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = 5 * time.Minute
	}
	if c.ArchiveRetention == 0 {
		c.ArchiveRetention = 30 * 24 * time.Hour
	}
	if c.ArchiveBatchSize == 0 {
		c.ArchiveBatchSize = 500
	}
}

// Orchestrator is the periodic decision engine that creates, advances and
// completes schedule sessions. Every mutation re-checks its preconditions
// against freshly read state and commits through status-guarded batches, so
// overlapping invocations are safe.
type Orchestrator struct {
	sessionRepo  session.Repository
	scheduleRepo schedule.Repository
	employeeRepo employee.Repository
	jobSiteRepo  jobsite.Repository
	companyRepo  company.Repository
	locationRepo location.Repository
	consentRepo  notification.SettingsRepository
	notifier     notification.Service
	scorer       session.Scorer
	cfg          Config

	now func() time.Time
}

func NewOrchestrator(
	sessionRepo session.Repository,
	scheduleRepo schedule.Repository,
	employeeRepo employee.Repository,
	jobSiteRepo jobsite.Repository,
	companyRepo company.Repository,
	locationRepo location.Repository,
	consentRepo notification.SettingsRepository,
	notifier notification.Service,
	scorer session.Scorer,
	cfg Config,
) *Orchestrator {
	cfg.applyDefaults()
	if scorer == nil {
		scorer = session.LinearScorer
	}
	return &Orchestrator{
		sessionRepo:  sessionRepo,
		scheduleRepo: scheduleRepo,
		employeeRepo: employeeRepo,
		jobSiteRepo:  jobSiteRepo,
		companyRepo:  companyRepo,
		locationRepo: locationRepo,
		consentRepo:  consentRepo,
		notifier:     notifier,
		scorer:       scorer,
		cfg:          cfg,
		now:          time.Now,
	}
}

// RegisterJobs wires the orchestrator into the cron scheduler.
func (o *Orchestrator) RegisterJobs(scheduler *cron.Scheduler, interval time.Duration) {
	scheduler.AddJob("session_orchestrator", interval, o.RunCycle)
}

// RunCycle executes one full orchestration pass. Sub-steps are independent:
// a failure in one is logged and must not prevent the others from running.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"create_due_sessions", o.createDueSessions},
		{"advance_active_sessions", o.advanceActiveSessions},
		{"complete_due_sessions", o.completeDueSessions},
		{"detect_overtime", o.detectOvertime},
		{"process_breaks", o.processBreaks},
		{"health_check", o.healthCheckSessions},
		{"detect_no_shows", o.detectNoShows},
		{"archive_completed", o.archiveCompletedSessions},
	}

	var failed int
	for _, step := range steps {
		start := o.now()
		err := step.fn(ctx)
		metrics.OrchestratorRunDuration.WithLabelValues(step.name).Observe(time.Since(start).Seconds())
		if err != nil {
			failed++
			metrics.OrchestratorRunsTotal.WithLabelValues(step.name, "error").Inc()
			slog.Error("Orchestrator sub-step failed", "step", step.name, "error", err)
			continue
		}
		metrics.OrchestratorRunsTotal.WithLabelValues(step.name, "ok").Inc()
	}

	o.updateStatusGauge(ctx)

	if failed > 0 {
		return fmt.Errorf("%d of %d orchestrator sub-steps failed", failed, len(steps))
	}
	return nil
}

// updateStatusGauge refreshes the live session count per status after a run.
func (o *Orchestrator) updateStatusGauge(ctx context.Context) {
	sessions, err := o.sessionRepo.ListByStatuses(ctx, session.ActiveStatuses()...)
	if err != nil {
		slog.Warn("Failed to refresh session status gauge", "error", err)
		return
	}

	counts := make(map[session.Status]int, len(session.ActiveStatuses()))
	for _, st := range session.ActiveStatuses() {
		counts[st] = 0
	}
	for _, s := range sessions {
		counts[s.Status]++
	}
	for st, n := range counts {
		metrics.ActiveSessionsByStatus.WithLabelValues(string(st)).Set(float64(n))
	}
}

// commit applies guarded updates and queues the accompanying notifications.
// Guard misses mean a concurrent run already committed the transition; they
// are logged at debug, never surfaced as errors.
func (o *Orchestrator) commit(ctx context.Context, step string, updates []session.GuardedUpdate, notifs []notification.Notification) error {
	if len(updates) > 0 {
		applied, err := o.sessionRepo.UpdateBatch(ctx, updates)
		if err != nil {
			return fmt.Errorf("%s: batch write failed: %w", step, err)
		}
		if applied < len(updates) {
			slog.Debug("Guarded updates skipped by concurrent run",
				"step", step, "requested", len(updates), "applied", applied)
		}
		for _, u := range updates {
			if u.Session.Status != u.Expected {
				metrics.SessionTransitionsTotal.WithLabelValues(string(u.Session.Status)).Inc()
			}
		}
	}

	// Dispatch is best-effort and must never fail the owning transition.
	for _, n := range notifs {
		if err := o.notifier.Queue(ctx, n); err != nil {
			slog.Error("Failed to queue notification", "step", step, "topic", n.Topic, "error", err)
		}
	}

	return nil
}
