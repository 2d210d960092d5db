package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type notificationSettingsRepository struct {
	db *database.DB
}

func NewNotificationSettingsRepository(db *database.DB) notification.SettingsRepository {
	return &notificationSettingsRepository{db: db}
}

// GetByEmployeeID implements notification.SettingsRepository.
func (r *notificationSettingsRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*notification.Settings, error) {
	query := `
		SELECT employee_id, auto_tracking_consent, notify_clock_events,
		       notify_breaks, notify_overtime
		FROM employee_notification_settings
		WHERE employee_id = $1
	`

	var s notification.Settings
	err := r.db.QueryRow(ctx, query, employeeID).Scan(
		&s.EmployeeID, &s.AutoTrackingConsent, &s.NotifyClockEvents,
		&s.NotifyBreaks, &s.NotifyOvertime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}

	return &s, nil
}
