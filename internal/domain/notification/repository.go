package notification

import "context"

// SettingsRepository defines read access to employee notification settings.
type SettingsRepository interface {
	// GetByEmployeeID retrieves an employee's consent record, or nil when
	// none exists; callers fall back to DefaultSettings.
	GetByEmployeeID(ctx context.Context, employeeID string) (*Settings, error)
}
