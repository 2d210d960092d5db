package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

const (
	locationTimeoutAfter = 15 * time.Minute
	stuckSessionAfter    = 60 * time.Minute
)

// healthCheckSessions attaches advisory diagnostics to active sessions.
// Health never changes lifecycle status; it surfaces stale location feeds and
// stuck records for operator remediation.
func (o *Orchestrator) healthCheckSessions(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx, session.ActiveStatuses()...)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	var updates []session.GuardedUpdate

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		if s.LastHealthCheck != nil && now.Sub(*s.LastHealthCheck) < o.cfg.HealthCheckInterval {
			continue
		}

		health := session.HealthHealthy

		lastSeen := s.MonitoringStarted
		if s.LastLocationUpdate != nil {
			lastSeen = *s.LastLocationUpdate
		}
		if now.Sub(lastSeen) >= locationTimeoutAfter {
			health = session.HealthWarning
			if !s.HasUnresolvedError(session.ErrKindLocationTimeout) {
				s.AppendError(now, session.ErrKindLocationTimeout,
					fmt.Sprintf("no location update since %s", lastSeen.Format(time.RFC3339)),
					session.SeverityWarning)
			}
		}

		if now.Sub(s.UpdatedAt) >= stuckSessionAfter {
			health = session.HealthError
			if !s.HasUnresolvedError(session.ErrKindStuckSession) {
				s.AppendError(now, session.ErrKindStuckSession,
					fmt.Sprintf("session record not updated since %s", s.UpdatedAt.Format(time.RFC3339)),
					session.SeverityError)
			}
		}

		t := now
		s.LastHealthCheck = &t
		s.HealthStatus = health
		s.UpdatedBy = session.ActorSystem

		updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
	}

	return o.commit(ctx, "health_check", updates, nil)
}
