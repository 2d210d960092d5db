package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/location"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type locationRepository struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.Repository {
	return &locationRepository{db: db}
}

// GetLatest implements location.Repository.
func (r *locationRepository) GetLatest(ctx context.Context, employeeID string) (*location.Fix, error) {
	query := `
		SELECT employee_id, latitude, longitude, accuracy, reported_at
		FROM employee_locations
		WHERE employee_id = $1
		ORDER BY reported_at DESC
		LIMIT 1
	`

	var f location.Fix
	err := r.db.QueryRow(ctx, query, employeeID).Scan(
		&f.EmployeeID, &f.Latitude, &f.Longitude, &f.Accuracy, &f.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest location: %w", err)
	}

	return &f, nil
}
