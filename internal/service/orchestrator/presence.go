package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/geo"
)

// advanceActiveSessions is the presence and clock decision engine. For every
// active session it fetches the employee's latest location, evaluates
// geofence membership and applies arrival, departure, auto clock-in and auto
// clock-out rules. A session whose location cannot be read keeps its presence
// state; that alone is not an error.
func (o *Orchestrator) advanceActiveSessions(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx, session.ActiveStatuses()...)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	var updates []session.GuardedUpdate
	var notifs []notification.Notification

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		fix, err := o.locationRepo.GetLatest(ctx, s.EmployeeID)
		if err != nil {
			slog.Warn("Location feed read failed", "session_id", s.ID, "employee_id", s.EmployeeID, "error", err)
			continue
		}
		if fix == nil {
			// No location ever reported; retried next cycle.
			continue
		}

		site, err := o.jobSiteRepo.GetByID(ctx, s.JobSiteID)
		if err != nil {
			slog.Warn("Job site lookup failed", "session_id", s.ID, "job_site_id", s.JobSiteID, "error", err)
			continue
		}

		loc := &session.GeoPoint{Latitude: fix.Latitude, Longitude: fix.Longitude, Accuracy: fix.Accuracy}
		inside := geo.WithinRadius(
			geo.Point{Latitude: fix.Latitude, Longitude: fix.Longitude},
			geo.Point{Latitude: site.Latitude, Longitude: site.Longitude},
			site.RadiusMeters,
		)

		// Every evaluated session stamps its location update time,
		// transition or not.
		t := now
		s.LastLocationUpdate = &t

		if inside {
			o.evaluateArrival(&s, now, loc, &notifs)
		} else {
			o.evaluateDeparture(&s, now, loc, &notifs)
		}

		o.evaluateEndOfShiftClockOut(&s, now, &notifs)

		updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
	}

	return o.commit(ctx, "advance_active_sessions", updates, notifs)
}

// evaluateArrival handles a session whose employee is inside the geofence.
func (o *Orchestrator) evaluateArrival(s *session.Session, now time.Time, loc *session.GeoPoint, notifs *[]notification.Notification) {
	// Re-entry cancels any pending geofence exit.
	if s.ExitDetectedAt != nil {
		s.ExitDetectedAt = nil
	}

	if !s.EmployeePresent {
		t := now
		s.EmployeePresent = true
		s.ArrivalTime = &t
		s.AppendEvent(now, session.EventEmployeeArrived, session.ActorGeofence, "entered job site geofence", loc)
	}

	if o.autoClockInEligible(s, now) {
		t := now
		s.ClockedIn = true
		s.ClockInTime = &t
		s.AutoClockInTriggered = true
		if err := s.Transition(session.StatusClockedIn); err != nil {
			slog.Error("Auto clock-in transition rejected", "session_id", s.ID, "error", err)
			return
		}
		s.AppendEvent(now, session.EventAutoClockIn, session.ActorSystem, "auto clock-in conditions met", loc)

		if s.Policy.Consent.NotifyClockEvents {
			*notifs = append(*notifs, notification.Notification{
				Topic:   notification.EmployeeTopic(s.EmployeeID),
				Type:    notification.TypeAutoClockIn,
				Title:   "Clocked in",
				Message: "You were automatically clocked in at your job site",
				Data:    map[string]interface{}{"sessionId": s.ID},
			})
		}
	}
}

// autoClockInEligible re-checks every auto clock-in precondition against
// current record state. All conditions must hold.
func (o *Orchestrator) autoClockInEligible(s *session.Session, now time.Time) bool {
	if s.Status != session.StatusMonitoringActive || s.ClockedIn || !s.EmployeePresent {
		return false
	}
	if !s.Policy.AutoClockInEnabled || !s.Policy.Consent.AutoTrackingConsent {
		return false
	}
	buffer := time.Duration(s.Policy.ClockInBufferMinutes) * time.Minute
	if now.Before(s.ScheduledStart.Add(-buffer)) {
		return false
	}
	if s.ArrivalTime == nil {
		return false
	}
	dwell := now.Sub(*s.ArrivalTime)
	return dwell >= time.Duration(s.Policy.MinimumTimeAtSiteMinutes)*time.Minute
}

// evaluateDeparture handles a session whose employee is outside the geofence.
// Departure is confirmed only after the exit grace period has elapsed since
// the exit was first detected; re-entry before that clears the pending exit.
func (o *Orchestrator) evaluateDeparture(s *session.Session, now time.Time, loc *session.GeoPoint, notifs *[]notification.Notification) {
	if !s.EmployeePresent {
		return
	}

	if s.ExitDetectedAt == nil {
		t := now
		s.ExitDetectedAt = &t
		s.AppendEvent(now, session.EventGeofenceExitPending, session.ActorGeofence, "left geofence, grace period running", loc)
		return
	}

	grace := time.Duration(s.Policy.ExitGracePeriodMinutes) * time.Minute
	if now.Sub(*s.ExitDetectedAt) < grace {
		return
	}

	t := now
	s.EmployeePresent = false
	s.DepartureTime = &t
	s.ExitDetectedAt = nil
	s.AppendEvent(now, session.EventEmployeeDeparted, session.ActorGeofence, "departure confirmed after grace period", loc)

	if s.ClockedIn && s.Policy.GeofenceAutoClockOut {
		o.clockOut(s, now, "left job site geofence", loc, notifs)
	}
}

// evaluateEndOfShiftClockOut clocks a session out once the scheduled end plus
// the overtime threshold has passed, when the company enables it.
func (o *Orchestrator) evaluateEndOfShiftClockOut(s *session.Session, now time.Time, notifs *[]notification.Notification) {
	if !s.ClockedIn || !s.Policy.AutoClockOutAtEnd {
		return
	}
	threshold := time.Duration(s.Policy.OvertimeThresholdMinutes) * time.Minute
	if !now.After(s.ScheduledEnd.Add(threshold)) {
		return
	}
	o.clockOut(s, now, "scheduled end passed", nil, notifs)
}

// clockOut performs the shared auto clock-out sequence: close any open break
// and overtime period, clear the clock flags and move to clocked_out.
func (o *Orchestrator) clockOut(s *session.Session, now time.Time, reason string, loc *session.GeoPoint, notifs *[]notification.Notification) {
	if !s.ClockedIn {
		return
	}

	if s.OnBreak {
		if err := s.EndBreak(now); err == nil {
			s.AppendEvent(now, session.EventBreakEnded, session.ActorSystem, "break closed by clock-out", nil)
			if err := s.Transition(session.StatusClockedIn); err != nil {
				slog.Error("Break close transition rejected", "session_id", s.ID, "error", err)
				return
			}
		}
	}

	if open := s.OpenOvertime(); open != nil {
		t := now
		open.EndTime = &t
	}

	t := now
	s.ClockedIn = false
	s.ClockOutTime = &t
	s.AutoClockOutTriggered = true
	if err := s.Transition(session.StatusClockedOut); err != nil {
		slog.Error("Auto clock-out transition rejected", "session_id", s.ID, "status", s.Status, "error", err)
		return
	}
	s.AppendEvent(now, session.EventAutoClockOut, session.ActorSystem, reason, loc)

	if s.Policy.Consent.NotifyClockEvents {
		*notifs = append(*notifs, notification.Notification{
			Topic:   notification.EmployeeTopic(s.EmployeeID),
			Type:    notification.TypeAutoClockOut,
			Title:   "Clocked out",
			Message: "You were automatically clocked out: " + reason,
			Data:    map[string]interface{}{"sessionId": s.ID},
		})
	}
}
