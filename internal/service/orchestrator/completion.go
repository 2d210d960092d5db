package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

// completeDueSessions retires sessions whose scheduled end plus the
// completion buffer has passed. Sessions still on the clock are force
// clocked out first; final metrics are computed by the injected scorer.
func (o *Orchestrator) completeDueSessions(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx,
		session.StatusMonitoringActive, session.StatusClockedIn,
		session.StatusOnBreak, session.StatusOvertime, session.StatusClockedOut)
	if err != nil {
		return fmt.Errorf("list completable sessions: %w", err)
	}

	var updates []session.GuardedUpdate
	var notifs []notification.Notification

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		buffer := time.Duration(s.Policy.CompletionBufferMinutes) * time.Minute
		if !now.After(s.ScheduledEnd.Add(buffer)) {
			continue
		}

		// A monitoring session with the employee still absent belongs to
		// the no-show detector, not completion.
		if s.Status == session.StatusMonitoringActive && !s.EmployeePresent {
			continue
		}

		if s.ClockedIn {
			o.clockOut(&s, now, "shift completion", nil, &notifs)
			if s.ClockedIn {
				// Clock-out failed; leave the session for the next run.
				continue
			}
		}

		s.Metrics = o.scorer(&s, now)
		if err := s.Transition(session.StatusCompleted); err != nil {
			slog.Error("Completion transition rejected", "session_id", s.ID, "status", s.Status, "error", err)
			continue
		}
		s.AppendEvent(now, session.EventSessionCompleted, session.ActorSystem,
			fmt.Sprintf("worked %d minutes, compliance %.0f", s.Metrics.WorkedMinutes, s.Metrics.ComplianceScore), nil)

		updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
	}

	return o.commit(ctx, "complete_due_sessions", updates, notifs)
}
