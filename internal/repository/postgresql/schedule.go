package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/schedule"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

// GetByID implements schedule.Repository.
func (r *scheduleRepository) GetByID(ctx context.Context, id string) (schedule.Shift, error) {
	query := `
		SELECT id, company_id, employee_id, job_site_id, start_time, end_time,
		       timezone, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`

	var s schedule.Shift
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.JobSiteID, &s.StartTime, &s.EndTime,
		&s.Timezone, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return s, nil
}

// ListDueWithoutSession implements schedule.Repository.
func (r *scheduleRepository) ListDueWithoutSession(ctx context.Context, from, to time.Time) ([]schedule.Shift, error) {
	query := `
		SELECT s.id, s.company_id, s.employee_id, s.job_site_id, s.start_time,
		       s.end_time, s.timezone, s.created_at, s.updated_at
		FROM schedules s
		LEFT JOIN schedule_sessions ss ON ss.schedule_id = s.id
		WHERE ss.id IS NULL
		  AND s.start_time >= $1
		  AND s.start_time < $2
		ORDER BY s.start_time
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		var s schedule.Shift
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.EmployeeID, &s.JobSiteID, &s.StartTime,
			&s.EndTime, &s.Timezone, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift row: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift rows: %w", err)
	}

	return shifts, nil
}
