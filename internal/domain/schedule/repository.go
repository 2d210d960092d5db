package schedule

import (
	"context"
	"time"
)

// Repository defines read access to planned shifts.
type Repository interface {
	// GetByID retrieves a shift by ID.
	GetByID(ctx context.Context, id string) (Shift, error)

	// ListDueWithoutSession retrieves shifts whose start time falls within
	// [from, to) and which have no schedule session yet, across companies.
	ListDueWithoutSession(ctx context.Context, from, to time.Time) ([]Shift, error)
}
