package company

import "context"

// Repository defines read access to company policy settings.
type Repository interface {
	// GetSettings retrieves the settings for a company. Returns
	// ErrSettingsNotFound when the company has no settings record; callers
	// fall back to DefaultSettings.
	GetSettings(ctx context.Context, companyID string) (Settings, error)
}
