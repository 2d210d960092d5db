package session

import "fmt"

// Status is the session lifecycle state. Transitions go through Transition so
// illegal edges are rejected in one place instead of being derived from flag
// combinations.
type Status string

const (
	StatusScheduled        Status = "scheduled"
	StatusMonitoringActive Status = "monitoring_active"
	StatusClockedIn        Status = "clocked_in"
	StatusOnBreak          Status = "on_break"
	StatusOvertime         Status = "overtime"
	StatusClockedOut       Status = "clocked_out"
	StatusCompleted        Status = "completed"
	StatusNoShow           Status = "no_show"
	StatusError            Status = "error"
)

// legalTransitions enumerates every edge of the session state machine.
// completed and no_show are terminal. The error status is an administrative
// dead end loaded from storage; this core never transitions into or out of it.
var legalTransitions = map[Status][]Status{
	StatusScheduled:        {StatusMonitoringActive},
	StatusMonitoringActive: {StatusClockedIn, StatusNoShow, StatusCompleted},
	StatusClockedIn:        {StatusOnBreak, StatusOvertime, StatusClockedOut},
	StatusOnBreak:          {StatusClockedIn, StatusOvertime},
	StatusOvertime:         {StatusOnBreak, StatusClockedOut},
	StatusClockedOut:       {StatusCompleted},
	StatusCompleted:        {},
	StatusNoShow:           {},
	StatusError:            {},
}

// CanTransitionTo reports whether the edge from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return len(legalTransitions[s]) == 0
}

// ActiveStatuses are the statuses a session can hold while the orchestrator
// still owns it.
func ActiveStatuses() []Status {
	return []Status{StatusMonitoringActive, StatusClockedIn, StatusOnBreak, StatusOvertime}
}

// ClockedInStatuses are the statuses in which the employee is on the clock.
func ClockedInStatuses() []Status {
	return []Status{StatusClockedIn, StatusOnBreak, StatusOvertime}
}

// Transition moves the session to next, rejecting illegal edges.
func (s *Session) Transition(next Status) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	return nil
}
