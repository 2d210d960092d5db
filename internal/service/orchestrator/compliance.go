package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

// detectNoShows is the compliance violation detector. A monitoring session
// whose employee is still absent past the late threshold becomes a no_show
// and the company's administrators are notified.
func (o *Orchestrator) detectNoShows(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx, session.StatusMonitoringActive)
	if err != nil {
		return fmt.Errorf("list monitoring sessions: %w", err)
	}

	var updates []session.GuardedUpdate
	var notifs []notification.Notification

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		if s.EmployeePresent {
			continue
		}
		threshold := time.Duration(s.Policy.LateThresholdMinutes) * time.Minute
		if !now.After(s.ScheduledStart.Add(threshold)) {
			continue
		}

		minutesLate := int(now.Sub(s.ScheduledStart).Minutes())

		if err := s.Transition(session.StatusNoShow); err != nil {
			slog.Error("No-show transition rejected", "session_id", s.ID, "error", err)
			continue
		}
		s.Metrics = o.scorer(&s, now)
		s.AppendEvent(now, session.EventNoShowDetected, session.ActorSystem,
			fmt.Sprintf("employee absent %d minutes after scheduled start", minutesLate), nil)

		employeeName := s.EmployeeID
		if emp, err := o.employeeRepo.GetByID(ctx, s.EmployeeID); err == nil {
			employeeName = emp.FullName
		}
		siteName := s.JobSiteID
		if site, err := o.jobSiteRepo.GetByID(ctx, s.JobSiteID); err == nil {
			siteName = site.Name
		}

		notifs = append(notifs, notification.Notification{
			Topic:   notification.CompanyAdminTopic(s.CompanyID),
			Type:    notification.TypeNoShow,
			Title:   "No-show detected",
			Message: fmt.Sprintf("%s did not arrive at %s (%d minutes late)", employeeName, siteName, minutesLate),
			Data: map[string]interface{}{
				"sessionId":   s.ID,
				"employeeId":  s.EmployeeID,
				"jobSiteId":   s.JobSiteID,
				"minutesLate": minutesLate,
			},
		})

		updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
	}

	return o.commit(ctx, "detect_no_shows", updates, notifs)
}
