package company

import "time"

// Settings is the per-company time tracking policy. Sessions freeze a copy of
// these values at creation.
type Settings struct {
	CompanyID                     string
	AutoClockInEnabled            bool
	ClockInBufferMinutes          int
	MinimumTimeAtSiteMinutes      int
	ExitGracePeriodMinutes        int
	GeofenceAutoClockOut          bool
	AutoClockOutAtEnd             bool
	OvertimeThresholdMinutes      int
	AutoStartBreak                bool
	AutoEndBreak                  bool
	MinimumWorkBeforeBreakMinutes int
	RequiredBreakDurationMinutes  int
	LateThresholdMinutes          int
	CompletionBufferMinutes       int
	NotifyAdminOnOvertime         bool
	NotifyEmployeeOnOvertime      bool
	CreatedAt                     time.Time
	UpdatedAt                     time.Time
}

// DefaultSettings returns the policy applied when a company has no settings
// record.
func DefaultSettings(companyID string) Settings {
	return Settings{
		CompanyID:                     companyID,
		AutoClockInEnabled:            true,
		ClockInBufferMinutes:          15,
		MinimumTimeAtSiteMinutes:      5,
		ExitGracePeriodMinutes:        5,
		GeofenceAutoClockOut:          false,
		AutoClockOutAtEnd:             true,
		OvertimeThresholdMinutes:      15,
		AutoStartBreak:                false,
		AutoEndBreak:                  true,
		MinimumWorkBeforeBreakMinutes: 240,
		RequiredBreakDurationMinutes:  30,
		LateThresholdMinutes:          15,
		CompletionBufferMinutes:       30,
		NotifyAdminOnOvertime:         true,
		NotifyEmployeeOnOvertime:      true,
	}
}
