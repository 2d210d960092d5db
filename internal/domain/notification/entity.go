package notification

import "fmt"

// Type represents the type of notification
type Type string

const (
	TypeMonitoringStarted Type = "monitoring_started"
	TypeAutoClockIn       Type = "auto_clock_in"
	TypeAutoClockOut      Type = "auto_clock_out"
	TypeBreakStarted      Type = "break_started"
	TypeBreakEnded        Type = "break_ended"
	TypeBreakRecommended  Type = "break_recommended"
	TypeOvertimeStarted   Type = "overtime_started"
	TypeNoShow            Type = "no_show"
)

// Notification is one outbound push message addressed by topic.
type Notification struct {
	Topic   string
	Type    Type
	Title   string
	Message string
	Data    map[string]interface{}
}

// EmployeeTopic returns the push topic for a single employee's devices.
func EmployeeTopic(employeeID string) string {
	return fmt.Sprintf("user-%s", employeeID)
}

// CompanyAdminTopic returns the push topic for a company's administrators.
func CompanyAdminTopic(companyID string) string {
	return fmt.Sprintf("company-%s-admins", companyID)
}

// Settings is an employee's notification and tracking consent record.
type Settings struct {
	EmployeeID          string
	AutoTrackingConsent bool
	NotifyClockEvents   bool
	NotifyBreaks        bool
	NotifyOvertime      bool
}

// DefaultSettings returns the consent applied when an employee has no
// settings record: tracking on, all notifications on.
func DefaultSettings(employeeID string) Settings {
	return Settings{
		EmployeeID:          employeeID,
		AutoTrackingConsent: true,
		NotifyClockEvents:   true,
		NotifyBreaks:        true,
		NotifyOvertime:      true,
	}
}
