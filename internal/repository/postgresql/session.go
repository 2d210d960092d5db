package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/session"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type sessionRepository struct {
	db         *database.DB
	batchLimit int
}

// NewSessionRepository returns a session repository whose batched writes are
// chunked to batchLimit statements per transaction.
func NewSessionRepository(db *database.DB, batchLimit int) session.Repository {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	return &sessionRepository{db: db, batchLimit: batchLimit}
}

const sessionColumns = `
	id, schedule_id, employee_id, job_site_id, company_id,
	scheduled_start_time, scheduled_end_time, timezone, monitoring_started,
	status, employee_present, arrival_time, departure_time, exit_detected_at,
	last_location_update, clocked_in, clock_in_time, clock_out_time,
	auto_clock_in_triggered, auto_clock_out_triggered, on_break, breaks,
	is_in_overtime, overtime_periods, policy_snapshot, events, errors,
	metrics, health_status, last_health_check, created_at, updated_at, updated_by
`

func scanSession(row pgx.Row) (session.Session, error) {
	var s session.Session
	err := row.Scan(
		&s.ID, &s.ScheduleID, &s.EmployeeID, &s.JobSiteID, &s.CompanyID,
		&s.ScheduledStart, &s.ScheduledEnd, &s.Timezone, &s.MonitoringStarted,
		&s.Status, &s.EmployeePresent, &s.ArrivalTime, &s.DepartureTime, &s.ExitDetectedAt,
		&s.LastLocationUpdate, &s.ClockedIn, &s.ClockInTime, &s.ClockOutTime,
		&s.AutoClockInTriggered, &s.AutoClockOutTriggered, &s.OnBreak, &s.Breaks,
		&s.IsInOvertime, &s.OvertimePeriods, &s.Policy, &s.Events, &s.Errors,
		&s.Metrics, &s.HealthStatus, &s.LastHealthCheck, &s.CreatedAt, &s.UpdatedAt, &s.UpdatedBy,
	)
	return s, err
}

// Create implements session.Repository.
func (r *sessionRepository) Create(ctx context.Context, s session.Session) (session.Session, error) {
	query := `
		INSERT INTO schedule_sessions (
			id, schedule_id, employee_id, job_site_id, company_id,
			scheduled_start_time, scheduled_end_time, timezone, monitoring_started,
			status, employee_present, clocked_in, on_break, breaks,
			is_in_overtime, overtime_periods, policy_snapshot, events, errors,
			metrics, health_status, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22
		) RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		s.ID, s.ScheduleID, s.EmployeeID, s.JobSiteID, s.CompanyID,
		s.ScheduledStart, s.ScheduledEnd, s.Timezone, s.MonitoringStarted,
		s.Status, s.EmployeePresent, s.ClockedIn, s.OnBreak, s.Breaks,
		s.IsInOvertime, s.OvertimePeriods, s.Policy, s.Events, s.Errors,
		s.Metrics, s.HealthStatus, s.UpdatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return session.Session{}, fmt.Errorf("failed to create schedule session: %w", err)
	}

	return s, nil
}

// GetByID implements session.Repository.
func (r *sessionRepository) GetByID(ctx context.Context, id string, companyID string) (session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM schedule_sessions WHERE id = $1 AND company_id = $2`

	s, err := scanSession(r.db.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrSessionNotFound
		}
		return session.Session{}, fmt.Errorf("failed to get schedule session: %w", err)
	}

	return s, nil
}

// GetByScheduleID implements session.Repository.
func (r *sessionRepository) GetByScheduleID(ctx context.Context, scheduleID string) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM schedule_sessions WHERE schedule_id = $1 LIMIT 1`

	s, err := scanSession(r.db.QueryRow(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by schedule: %w", err)
	}

	return &s, nil
}

// ListByStatuses implements session.Repository.
func (r *sessionRepository) ListByStatuses(ctx context.Context, statuses ...session.Status) ([]session.Session, error) {
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM schedule_sessions
		WHERE status = ANY($1)
		ORDER BY company_id, scheduled_start_time
	`

	rows, err := r.db.Query(ctx, query, values)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions by status: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return sessions, nil
}

// ListCompletedBefore implements session.Repository.
func (r *sessionRepository) ListCompletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]session.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM schedule_sessions
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, session.StatusCompleted, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}

	return sessions, nil
}

const guardedUpdateQuery = `
	UPDATE schedule_sessions SET
		status = $3,
		employee_present = $4,
		arrival_time = $5,
		departure_time = $6,
		exit_detected_at = $7,
		last_location_update = $8,
		clocked_in = $9,
		clock_in_time = $10,
		clock_out_time = $11,
		auto_clock_in_triggered = $12,
		auto_clock_out_triggered = $13,
		on_break = $14,
		breaks = $15,
		is_in_overtime = $16,
		overtime_periods = $17,
		events = $18,
		errors = $19,
		metrics = $20,
		health_status = $21,
		last_health_check = $22,
		updated_by = $23,
		updated_at = NOW()
	WHERE id = $1 AND status = $2
`

// UpdateBatch implements session.Repository. Each chunk of batchLimit updates
// is one transaction; the status guard makes re-application of an
// already-committed transition a zero-row no-op.
func (r *sessionRepository) UpdateBatch(ctx context.Context, updates []session.GuardedUpdate) (int, error) {
	applied := 0

	for start := 0; start < len(updates); start += r.batchLimit {
		end := start + r.batchLimit
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[start:end]

		err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, u := range chunk {
				s := u.Session
				batch.Queue(guardedUpdateQuery,
					s.ID, u.Expected,
					s.Status, s.EmployeePresent, s.ArrivalTime, s.DepartureTime,
					s.ExitDetectedAt, s.LastLocationUpdate, s.ClockedIn, s.ClockInTime,
					s.ClockOutTime, s.AutoClockInTriggered, s.AutoClockOutTriggered,
					s.OnBreak, s.Breaks, s.IsInOvertime, s.OvertimePeriods,
					s.Events, s.Errors, s.Metrics, s.HealthStatus, s.LastHealthCheck,
					s.UpdatedBy,
				)
			}

			results := tx.SendBatch(ctx, batch)
			defer results.Close()

			for range chunk {
				tag, err := results.Exec()
				if err != nil {
					return fmt.Errorf("guarded session update: %w", err)
				}
				applied += int(tag.RowsAffected())
			}
			return nil
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply session batch: %w", err)
		}
	}

	return applied, nil
}

// Archive implements session.Repository. Sessions are copied to the archive
// table and removed from the live table in one transaction per chunk.
func (r *sessionRepository) Archive(ctx context.Context, ids []string) (int, error) {
	archived := 0

	for start := 0; start < len(ids); start += r.batchLimit {
		end := start + r.batchLimit
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO schedule_session_archive
				SELECT `+sessionColumns+`, NOW() AS archived_at
				FROM schedule_sessions
				WHERE id = ANY($1)
				ON CONFLICT (id) DO NOTHING
			`, chunk)
			if err != nil {
				return fmt.Errorf("copy sessions to archive: %w", err)
			}

			tag, err := tx.Exec(ctx, `DELETE FROM schedule_sessions WHERE id = ANY($1)`, chunk)
			if err != nil {
				return fmt.Errorf("delete archived sessions: %w", err)
			}
			archived += int(tag.RowsAffected())
			return nil
		})
		if err != nil {
			return archived, fmt.Errorf("failed to archive session batch: %w", err)
		}
	}

	return archived, nil
}
