package employee

import "context"

// Repository defines read access to employee records.
type Repository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}
