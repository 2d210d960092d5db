package session

import (
	"context"
	"time"
)

// GuardedUpdate pairs a mutated session with the status the stored row must
// still hold for the update to apply. A concurrent run that already committed
// the same transition makes the guard miss, which is not an error.
type GuardedUpdate struct {
	Session  Session
	Expected Status
}

// Repository defines data access for schedule sessions. Writes are grouped
// into atomic batches sized to the store's batch limit; a failed batch leaves
// its documents in their prior state.
type Repository interface {
	// Create inserts a new session. Fails if a session for the same
	// schedule already exists.
	Create(ctx context.Context, s Session) (Session, error)

	// GetByID retrieves a session by ID with company isolation.
	GetByID(ctx context.Context, id string, companyID string) (Session, error)

	// GetByScheduleID retrieves the session created for a planned shift,
	// or nil if none exists.
	GetByScheduleID(ctx context.Context, scheduleID string) (*Session, error)

	// ListByStatuses retrieves all sessions currently in any of the given
	// statuses, across companies.
	ListByStatuses(ctx context.Context, statuses ...Status) ([]Session, error)

	// ListCompletedBefore retrieves completed sessions last updated before
	// the cutoff, up to limit rows.
	ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]Session, error)

	// UpdateBatch applies guarded updates in atomic batches and returns
	// the number of rows whose guard matched.
	UpdateBatch(ctx context.Context, updates []GuardedUpdate) (int, error)

	// Archive copies the given completed sessions into the archive store
	// and removes them from the live collection, atomically per batch.
	// Returns the number of sessions archived.
	Archive(ctx context.Context, ids []string) (int, error)
}
