package jobsite

import "context"

// Repository defines read access to job site records.
type Repository interface {
	GetByID(ctx context.Context, id string) (JobSite, error)
}
