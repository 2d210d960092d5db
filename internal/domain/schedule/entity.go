package schedule

import "time"

// Shift is one planned work shift. Shifts are authored by the calendar
// tooling; this service only reads them.
type Shift struct {
	ID         string
	CompanyID  string
	EmployeeID string
	JobSiteID  string
	StartTime  time.Time
	EndTime    time.Time
	Timezone   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
