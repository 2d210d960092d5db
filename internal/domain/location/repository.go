package location

import "context"

// Repository defines read access to the location feed.
type Repository interface {
	// GetLatest retrieves the most recent fix for an employee, or nil when
	// the employee has never reported a location.
	GetLatest(ctx context.Context, employeeID string) (*Fix, error)
}
