package session

import (
	"time"
)

// Actor identifies what triggered a session mutation.
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorGeofence Actor = "geofence"
	ActorAdmin    Actor = "admin"
	ActorEmployee Actor = "employee"
)

// EventType represents the type of a session event
type EventType string

const (
	EventSessionCreated      EventType = "session_created"
	EventEmployeeArrived     EventType = "employee_arrived"
	EventEmployeeDeparted    EventType = "employee_departed"
	EventGeofenceExitPending EventType = "geofence_exit_pending"
	EventAutoClockIn         EventType = "auto_clock_in"
	EventAutoClockOut        EventType = "auto_clock_out"
	EventBreakStarted        EventType = "break_started"
	EventBreakEnded          EventType = "break_ended"
	EventBreakRecommended    EventType = "break_recommended"
	EventOvertimeStarted     EventType = "overtime_started"
	EventNoShowDetected      EventType = "no_show_detected"
	EventSessionCompleted    EventType = "session_completed"
)

// ErrorKind classifies entries in the session error log.
type ErrorKind string

const (
	ErrKindReferenceDataMissing        ErrorKind = "reference_data_missing"
	ErrKindLocationUnavailable         ErrorKind = "location_unavailable"
	ErrKindLocationTimeout             ErrorKind = "location_timeout"
	ErrKindStuckSession                ErrorKind = "stuck_session"
	ErrKindNotificationDispatchFailure ErrorKind = "notification_dispatch_failure"
	ErrKindBatchWriteFailure           ErrorKind = "batch_write_failure"
)

// Severity of a logged session error.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// HealthStatus is the advisory diagnostic flag, independent of lifecycle status.
type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	HealthWarning HealthStatus = "warning"
	HealthError   HealthStatus = "error"
)

// BreakType classifies how a break period was opened.
type BreakType string

const (
	BreakManual       BreakType = "manual"
	BreakAuto         BreakType = "auto"
	BreakRequired     BreakType = "required"
	BreakGeofenceExit BreakType = "geofence_exit"
)

// OvertimeReasonScheduleOverrun is the reason recorded when a session runs
// past its scheduled end.
const OvertimeReasonScheduleOverrun = "schedule_overrun"

// GeoPoint is a recorded device location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// BreakPeriod is one break inside a session. EndTime is nil while the break
// is open; at most one break may be open at a time.
type BreakPeriod struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Type            BreakType  `json:"type"`
	TriggeredBy     Actor      `json:"triggered_by"`
}

// OvertimePeriod is one stretch of overtime inside a session.
type OvertimePeriod struct {
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Reason    string     `json:"reason"`
	Approved  bool       `json:"approved"`
}

// Event is one append-only entry in the session event log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Detail    string    `json:"detail,omitempty"`
	Location  *GeoPoint `json:"location,omitempty"`
}

// SessionError is one entry in the session error log.
type SessionError struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Resolved  bool      `json:"resolved"`
}

// ConsentSnapshot freezes the employee's notification and tracking consent at
// session creation.
type ConsentSnapshot struct {
	AutoTrackingConsent bool `json:"auto_tracking_consent"`
	NotifyClockEvents   bool `json:"notify_clock_events"`
	NotifyBreaks        bool `json:"notify_breaks"`
	NotifyOvertime      bool `json:"notify_overtime"`
}

// PolicySnapshot freezes the company policy that governs a session. Later
// edits to company settings never retroactively alter an in-flight session.
type PolicySnapshot struct {
	AutoClockInEnabled            bool            `json:"auto_clock_in_enabled"`
	ClockInBufferMinutes          int             `json:"clock_in_buffer_minutes"`
	MinimumTimeAtSiteMinutes      int             `json:"minimum_time_at_site_minutes"`
	ExitGracePeriodMinutes        int             `json:"exit_grace_period_minutes"`
	GeofenceAutoClockOut          bool            `json:"geofence_auto_clock_out"`
	AutoClockOutAtEnd             bool            `json:"auto_clock_out_at_end"`
	OvertimeThresholdMinutes      int             `json:"overtime_threshold_minutes"`
	AutoStartBreak                bool            `json:"auto_start_break"`
	AutoEndBreak                  bool            `json:"auto_end_break"`
	MinimumWorkBeforeBreakMinutes int             `json:"minimum_work_before_break_minutes"`
	RequiredBreakDurationMinutes  int             `json:"required_break_duration_minutes"`
	LateThresholdMinutes          int             `json:"late_threshold_minutes"`
	CompletionBufferMinutes       int             `json:"completion_buffer_minutes"`
	NotifyAdminOnOvertime         bool            `json:"notify_admin_on_overtime"`
	NotifyEmployeeOnOvertime      bool            `json:"notify_employee_on_overtime"`
	Consent                       ConsentSnapshot `json:"consent"`
}

// Metrics holds the computed session metrics. TotalScheduledMinutes is fixed
// at creation; the rest are recomputed and never go below zero.
type Metrics struct {
	TotalScheduledMinutes int     `json:"total_scheduled_minutes"`
	WorkedMinutes         int     `json:"worked_minutes"`
	BreakMinutes          int     `json:"break_minutes"`
	OvertimeMinutes       int     `json:"overtime_minutes"`
	PunctualityScore      float64 `json:"punctuality_score"`
	AttendanceRate        float64 `json:"attendance_rate"`
	ComplianceScore       float64 `json:"compliance_score"`
}

// Session is one monitored occurrence of a planned shift. It is created by
// the session factory shortly before the scheduled start and mutated only by
// the orchestrator's decision engines.
type Session struct {
	ID         string
	ScheduleID string
	EmployeeID string
	JobSiteID  string
	CompanyID  string

	ScheduledStart    time.Time
	ScheduledEnd      time.Time
	Timezone          string
	MonitoringStarted time.Time

	Status Status

	EmployeePresent    bool
	ArrivalTime        *time.Time
	DepartureTime      *time.Time
	ExitDetectedAt     *time.Time
	LastLocationUpdate *time.Time

	ClockedIn             bool
	ClockInTime           *time.Time
	ClockOutTime          *time.Time
	AutoClockInTriggered  bool
	AutoClockOutTriggered bool

	OnBreak bool
	Breaks  []BreakPeriod

	IsInOvertime    bool
	OvertimePeriods []OvertimePeriod

	Policy PolicySnapshot

	Events []Event
	Errors []SessionError

	Metrics Metrics

	HealthStatus    HealthStatus
	LastHealthCheck *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy Actor
}

// AppendEvent records a state change in the append-only event log.
func (s *Session) AppendEvent(at time.Time, typ EventType, actor Actor, detail string, loc *GeoPoint) {
	s.Events = append(s.Events, Event{
		Timestamp: at,
		Type:      typ,
		Actor:     actor,
		Detail:    detail,
		Location:  loc,
	})
	s.UpdatedBy = actor
}

// AppendError records a diagnostic in the session error log.
func (s *Session) AppendError(at time.Time, kind ErrorKind, message string, severity Severity) {
	s.Errors = append(s.Errors, SessionError{
		Timestamp: at,
		Kind:      kind,
		Message:   message,
		Severity:  severity,
	})
}

// HasUnresolvedError reports whether an unresolved error of the given kind is
// already logged, so health checks do not stack duplicates.
func (s *Session) HasUnresolvedError(kind ErrorKind) bool {
	for _, e := range s.Errors {
		if e.Kind == kind && !e.Resolved {
			return true
		}
	}
	return false
}

// OpenBreak returns the currently open break period, or nil.
func (s *Session) OpenBreak() *BreakPeriod {
	for i := range s.Breaks {
		if s.Breaks[i].EndTime == nil {
			return &s.Breaks[i]
		}
	}
	return nil
}

// StartBreak opens a new break period. It fails if a break is already open.
func (s *Session) StartBreak(at time.Time, typ BreakType, actor Actor) error {
	if s.OpenBreak() != nil {
		return ErrBreakAlreadyOpen
	}
	s.Breaks = append(s.Breaks, BreakPeriod{
		StartTime:   at,
		Type:        typ,
		TriggeredBy: actor,
	})
	s.OnBreak = true
	return nil
}

// EndBreak closes the open break period and records its duration.
func (s *Session) EndBreak(at time.Time) error {
	open := s.OpenBreak()
	if open == nil {
		return ErrNoOpenBreak
	}
	end := at
	duration := int(at.Sub(open.StartTime).Minutes())
	if duration < 0 {
		duration = 0
	}
	open.EndTime = &end
	open.DurationMinutes = &duration
	s.OnBreak = false
	return nil
}

// OpenOvertime returns the currently open overtime period, or nil.
func (s *Session) OpenOvertime() *OvertimePeriod {
	for i := range s.OvertimePeriods {
		if s.OvertimePeriods[i].EndTime == nil {
			return &s.OvertimePeriods[i]
		}
	}
	return nil
}

// BreakMinutes returns the total break time accrued up to now, including the
// open break if any.
func (s *Session) BreakMinutes(now time.Time) int {
	total := 0
	for _, b := range s.Breaks {
		end := now
		if b.EndTime != nil {
			end = *b.EndTime
		}
		if m := int(end.Sub(b.StartTime).Minutes()); m > 0 {
			total += m
		}
	}
	return total
}

// WorkedMinutes returns clocked time minus break time up to now. Returns zero
// if the session never clocked in.
func (s *Session) WorkedMinutes(now time.Time) int {
	if s.ClockInTime == nil {
		return 0
	}
	end := now
	if s.ClockOutTime != nil {
		end = *s.ClockOutTime
	}
	worked := int(end.Sub(*s.ClockInTime).Minutes()) - s.BreakMinutes(now)
	if worked < 0 {
		return 0
	}
	return worked
}

// OvertimeMinutes returns the total overtime accrued up to now.
func (s *Session) OvertimeMinutes(now time.Time) int {
	total := 0
	for _, p := range s.OvertimePeriods {
		end := now
		if p.EndTime != nil {
			end = *p.EndTime
		}
		if m := int(end.Sub(p.StartTime).Minutes()); m > 0 {
			total += m
		}
	}
	return total
}

// LateMinutes returns how many minutes after the scheduled start the employee
// clocked in. For sessions that never clocked in it reports the delay up to
// now. Zero when on time or early.
func (s *Session) LateMinutes(now time.Time) int {
	ref := now
	if s.ClockInTime != nil {
		ref = *s.ClockInTime
	}
	late := int(ref.Sub(s.ScheduledStart).Minutes())
	if late < 0 {
		return 0
	}
	return late
}
