package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

// detectOvertime flags sessions still on the clock past their scheduled end
// plus the overtime threshold. A session is flagged exactly once: the
// isInOvertime re-check makes repeat runs a no-op.
func (o *Orchestrator) detectOvertime(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx, session.StatusClockedIn, session.StatusOnBreak)
	if err != nil {
		return fmt.Errorf("list clocked-in sessions: %w", err)
	}

	var updates []session.GuardedUpdate
	var notifs []notification.Notification

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		if s.IsInOvertime {
			continue
		}
		threshold := time.Duration(s.Policy.OvertimeThresholdMinutes) * time.Minute
		if !now.After(s.ScheduledEnd.Add(threshold)) {
			continue
		}

		s.OvertimePeriods = append(s.OvertimePeriods, session.OvertimePeriod{
			StartTime: now,
			Reason:    session.OvertimeReasonScheduleOverrun,
		})
		s.IsInOvertime = true
		// A session on break keeps its on_break status; the break-end
		// transition moves it to overtime.
		if s.Status == session.StatusClockedIn {
			if err := s.Transition(session.StatusOvertime); err != nil {
				slog.Error("Overtime transition rejected", "session_id", s.ID, "status", s.Status, "error", err)
				continue
			}
		}
		s.AppendEvent(now, session.EventOvertimeStarted, session.ActorSystem,
			fmt.Sprintf("scheduled end %s exceeded", s.ScheduledEnd.Format("15:04")), nil)

		if s.Policy.NotifyAdminOnOvertime {
			notifs = append(notifs, notification.Notification{
				Topic:   notification.CompanyAdminTopic(s.CompanyID),
				Type:    notification.TypeOvertimeStarted,
				Title:   "Employee in overtime",
				Message: fmt.Sprintf("Employee %s is working past their scheduled end", s.EmployeeID),
				Data:    map[string]interface{}{"sessionId": s.ID, "employeeId": s.EmployeeID},
			})
		}
		if s.Policy.NotifyEmployeeOnOvertime && s.Policy.Consent.NotifyOvertime {
			notifs = append(notifs, notification.Notification{
				Topic:   notification.EmployeeTopic(s.EmployeeID),
				Type:    notification.TypeOvertimeStarted,
				Title:   "Overtime started",
				Message: "You are now working overtime",
				Data:    map[string]interface{}{"sessionId": s.ID},
			})
		}

		updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
	}

	return o.commit(ctx, "detect_overtime", updates, notifs)
}
