package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
)

// processBreaks is the break automation engine. Clocked-in sessions that have
// worked past the policy interval without a break either get a required break
// opened (auto-start) or a recommendation notification. Open breaks with
// auto-end enabled are closed once the required duration has elapsed.
func (o *Orchestrator) processBreaks(ctx context.Context) error {
	now := o.now()

	sessions, err := o.sessionRepo.ListByStatuses(ctx,
		session.StatusClockedIn, session.StatusOvertime, session.StatusOnBreak)
	if err != nil {
		return fmt.Errorf("list clocked-in sessions: %w", err)
	}

	var updates []session.GuardedUpdate
	var notifs []notification.Notification

	for i := range sessions {
		s := sessions[i]
		expected := s.Status

		var changed bool
		switch s.Status {
		case session.StatusClockedIn, session.StatusOvertime:
			changed = o.evaluateBreakStart(&s, now, &notifs)
		case session.StatusOnBreak:
			changed = o.evaluateBreakEnd(&s, now, &notifs)
		}

		if changed {
			updates = append(updates, session.GuardedUpdate{Session: s, Expected: expected})
		}
	}

	return o.commit(ctx, "process_breaks", updates, notifs)
}

// evaluateBreakStart opens or recommends a break for a session with no open
// break once the work interval is exceeded.
func (o *Orchestrator) evaluateBreakStart(s *session.Session, now time.Time, notifs *[]notification.Notification) bool {
	if !s.ClockedIn || s.OpenBreak() != nil {
		return false
	}
	interval := s.Policy.MinimumWorkBeforeBreakMinutes
	if interval <= 0 {
		return false
	}
	if s.WorkedMinutes(now) < interval {
		return false
	}
	if minutesSinceLastBreak(s, now) < interval {
		return false
	}

	if !s.Policy.AutoStartBreak {
		// Recommend once per work interval; the event marks that the
		// recommendation for this stretch was already sent.
		if hasRecommendationSinceLastBreak(s) {
			return false
		}
		s.AppendEvent(now, session.EventBreakRecommended, session.ActorSystem,
			fmt.Sprintf("worked %d minutes without a break", s.WorkedMinutes(now)), nil)
		if s.Policy.Consent.NotifyBreaks {
			*notifs = append(*notifs, notification.Notification{
				Topic:   notification.EmployeeTopic(s.EmployeeID),
				Type:    notification.TypeBreakRecommended,
				Title:   "Time for a break",
				Message: "You have been working for a while; consider taking a break",
				Data:    map[string]interface{}{"sessionId": s.ID},
			})
		}
		return true
	}

	if err := s.StartBreak(now, session.BreakRequired, session.ActorSystem); err != nil {
		slog.Error("Failed to open required break", "session_id", s.ID, "error", err)
		return false
	}
	if err := s.Transition(session.StatusOnBreak); err != nil {
		slog.Error("Break start transition rejected", "session_id", s.ID, "error", err)
		return false
	}
	s.AppendEvent(now, session.EventBreakStarted, session.ActorSystem, "required break auto-started", nil)

	if s.Policy.Consent.NotifyBreaks {
		*notifs = append(*notifs, notification.Notification{
			Topic:   notification.EmployeeTopic(s.EmployeeID),
			Type:    notification.TypeBreakStarted,
			Title:   "Break started",
			Message: "A required break was started automatically",
			Data:    map[string]interface{}{"sessionId": s.ID},
		})
	}
	return true
}

// evaluateBreakEnd closes an open break once the required duration elapses.
func (o *Orchestrator) evaluateBreakEnd(s *session.Session, now time.Time, notifs *[]notification.Notification) bool {
	if !s.Policy.AutoEndBreak {
		return false
	}
	open := s.OpenBreak()
	if open == nil {
		return false
	}
	required := time.Duration(s.Policy.RequiredBreakDurationMinutes) * time.Minute
	if now.Sub(open.StartTime) < required {
		return false
	}

	if err := s.EndBreak(now); err != nil {
		slog.Error("Failed to close break", "session_id", s.ID, "error", err)
		return false
	}
	target := session.StatusClockedIn
	if s.IsInOvertime {
		target = session.StatusOvertime
	}
	if err := s.Transition(target); err != nil {
		slog.Error("Break end transition rejected", "session_id", s.ID, "error", err)
		return false
	}
	s.AppendEvent(now, session.EventBreakEnded, session.ActorSystem, "required break duration reached", nil)

	if s.Policy.Consent.NotifyBreaks {
		*notifs = append(*notifs, notification.Notification{
			Topic:   notification.EmployeeTopic(s.EmployeeID),
			Type:    notification.TypeBreakEnded,
			Title:   "Break ended",
			Message: "Your break was ended automatically",
			Data:    map[string]interface{}{"sessionId": s.ID},
		})
	}
	return true
}

// minutesSinceLastBreak returns the minutes elapsed since the last closed
// break, or since clock-in when the session has no breaks yet.
func minutesSinceLastBreak(s *session.Session, now time.Time) int {
	ref := s.ClockInTime
	for i := range s.Breaks {
		if s.Breaks[i].EndTime != nil {
			ref = s.Breaks[i].EndTime
		}
	}
	if ref == nil {
		return 0
	}
	m := int(now.Sub(*ref).Minutes())
	if m < 0 {
		return 0
	}
	return m
}

// hasRecommendationSinceLastBreak reports whether a break recommendation was
// already recorded after the most recent break ended.
func hasRecommendationSinceLastBreak(s *session.Session) bool {
	var lastBreakEnd time.Time
	for _, b := range s.Breaks {
		if b.EndTime != nil && b.EndTime.After(lastBreakEnd) {
			lastBreakEnd = *b.EndTime
		}
	}
	for _, e := range s.Events {
		if e.Type == session.EventBreakRecommended && e.Timestamp.After(lastBreakEnd) {
			return true
		}
	}
	return false
}
