package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/company"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/schedule"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/metrics"
)

// createDueSessions builds a monitoring session for every planned shift whose
// start time falls within the lookahead window and which has no session yet.
// A shift with missing reference data is skipped and logged, never fatal.
func (o *Orchestrator) createDueSessions(ctx context.Context) error {
	now := o.now()

	shifts, err := o.scheduleRepo.ListDueWithoutSession(ctx, now, now.Add(o.cfg.SessionLookahead))
	if err != nil {
		return fmt.Errorf("list due shifts: %w", err)
	}

	created := 0
	for _, shift := range shifts {
		// Re-check: a concurrent run may have created the session after
		// the listing query.
		existing, err := o.sessionRepo.GetByScheduleID(ctx, shift.ID)
		if err != nil {
			slog.Error("Failed to check for existing session", "schedule_id", shift.ID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		s, err := o.buildSession(ctx, shift)
		if err != nil {
			slog.Warn("Skipping shift with missing reference data",
				"schedule_id", shift.ID, "employee_id", shift.EmployeeID, "error", err)
			continue
		}

		if _, err := o.sessionRepo.Create(ctx, *s); err != nil {
			slog.Error("Failed to create schedule session", "schedule_id", shift.ID, "error", err)
			continue
		}
		created++
		metrics.SessionsCreatedTotal.Inc()
		metrics.SessionTransitionsTotal.WithLabelValues(string(session.StatusMonitoringActive)).Inc()

		if s.Policy.Consent.NotifyClockEvents {
			_ = o.notifier.Queue(ctx, notification.Notification{
				Topic:   notification.EmployeeTopic(s.EmployeeID),
				Type:    notification.TypeMonitoringStarted,
				Title:   "Shift monitoring started",
				Message: fmt.Sprintf("Your shift starting at %s is now being monitored", s.ScheduledStart.Format("15:04")),
				Data: map[string]interface{}{
					"sessionId":  s.ID,
					"scheduleId": s.ScheduleID,
				},
			})
		}
	}

	if created > 0 {
		slog.Info("Created schedule sessions", "count", created)
	}
	return nil
}

// buildSession resolves reference data for a shift and assembles a new
// session with a frozen policy snapshot.
func (o *Orchestrator) buildSession(ctx context.Context, shift schedule.Shift) (*session.Session, error) {
	emp, err := o.employeeRepo.GetByID(ctx, shift.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("resolve employee: %w", err)
	}

	site, err := o.jobSiteRepo.GetByID(ctx, shift.JobSiteID)
	if err != nil {
		return nil, fmt.Errorf("resolve job site: %w", err)
	}

	settings, err := o.companyRepo.GetSettings(ctx, shift.CompanyID)
	if err != nil {
		if !errors.Is(err, company.ErrSettingsNotFound) {
			return nil, fmt.Errorf("resolve company settings: %w", err)
		}
		settings = company.DefaultSettings(shift.CompanyID)
	}

	consent, err := o.consentRepo.GetByEmployeeID(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve notification settings: %w", err)
	}
	if consent == nil {
		defaults := notification.DefaultSettings(emp.ID)
		consent = &defaults
	}

	now := o.now()
	timezone := shift.Timezone
	if timezone == "" {
		timezone = site.Timezone
	}

	s := &session.Session{
		ID:                uuid.New().String(),
		ScheduleID:        shift.ID,
		EmployeeID:        emp.ID,
		JobSiteID:         site.ID,
		CompanyID:         shift.CompanyID,
		ScheduledStart:    shift.StartTime,
		ScheduledEnd:      shift.EndTime,
		Timezone:          timezone,
		MonitoringStarted: now,
		Status:            session.StatusMonitoringActive,
		Policy:            snapshotPolicy(settings, *consent),
		Metrics: session.Metrics{
			TotalScheduledMinutes: int(shift.EndTime.Sub(shift.StartTime).Minutes()),
		},
		HealthStatus: session.HealthHealthy,
		UpdatedBy:    session.ActorSystem,
	}
	s.AppendEvent(now, session.EventSessionCreated, session.ActorSystem,
		fmt.Sprintf("monitoring started for shift at %s", site.Name), nil)

	return s, nil
}

// snapshotPolicy freezes company settings and employee consent into the
// session so later policy edits never alter an in-flight session.
func snapshotPolicy(settings company.Settings, consent notification.Settings) session.PolicySnapshot {
	return session.PolicySnapshot{
		AutoClockInEnabled:            settings.AutoClockInEnabled,
		ClockInBufferMinutes:          settings.ClockInBufferMinutes,
		MinimumTimeAtSiteMinutes:      settings.MinimumTimeAtSiteMinutes,
		ExitGracePeriodMinutes:        settings.ExitGracePeriodMinutes,
		GeofenceAutoClockOut:          settings.GeofenceAutoClockOut,
		AutoClockOutAtEnd:             settings.AutoClockOutAtEnd,
		OvertimeThresholdMinutes:      settings.OvertimeThresholdMinutes,
		AutoStartBreak:                settings.AutoStartBreak,
		AutoEndBreak:                  settings.AutoEndBreak,
		MinimumWorkBeforeBreakMinutes: settings.MinimumWorkBeforeBreakMinutes,
		RequiredBreakDurationMinutes:  settings.RequiredBreakDurationMinutes,
		LateThresholdMinutes:          settings.LateThresholdMinutes,
		CompletionBufferMinutes:       settings.CompletionBufferMinutes,
		NotifyAdminOnOvertime:         settings.NotifyAdminOnOvertime,
		NotifyEmployeeOnOvertime:      settings.NotifyEmployeeOnOvertime,
		Consent: session.ConsentSnapshot{
			AutoTrackingConsent: consent.AutoTrackingConsent,
			NotifyClockEvents:   consent.NotifyClockEvents,
			NotifyBreaks:        consent.NotifyBreaks,
			NotifyOvertime:      consent.NotifyOvertime,
		},
	}
}
