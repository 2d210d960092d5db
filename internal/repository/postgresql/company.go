package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/company"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type companyRepository struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.Repository {
	return &companyRepository{db: db}
}

// GetSettings implements company.Repository.
func (r *companyRepository) GetSettings(ctx context.Context, companyID string) (company.Settings, error) {
	query := `
		SELECT company_id, auto_clock_in_enabled, clock_in_buffer_minutes,
		       minimum_time_at_site_minutes, exit_grace_period_minutes,
		       geofence_auto_clock_out, auto_clock_out_at_end,
		       overtime_threshold_minutes, auto_start_break, auto_end_break,
		       minimum_work_before_break_minutes, required_break_duration_minutes,
		       late_threshold_minutes, completion_buffer_minutes,
		       notify_admin_on_overtime, notify_employee_on_overtime,
		       created_at, updated_at
		FROM company_settings
		WHERE company_id = $1
	`

	var s company.Settings
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&s.CompanyID, &s.AutoClockInEnabled, &s.ClockInBufferMinutes,
		&s.MinimumTimeAtSiteMinutes, &s.ExitGracePeriodMinutes,
		&s.GeofenceAutoClockOut, &s.AutoClockOutAtEnd,
		&s.OvertimeThresholdMinutes, &s.AutoStartBreak, &s.AutoEndBreak,
		&s.MinimumWorkBeforeBreakMinutes, &s.RequiredBreakDurationMinutes,
		&s.LateThresholdMinutes, &s.CompletionBufferMinutes,
		&s.NotifyAdminOnOvertime, &s.NotifyEmployeeOnOvertime,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Settings{}, company.ErrSettingsNotFound
		}
		return company.Settings{}, fmt.Errorf("failed to get company settings: %w", err)
	}

	return s, nil
}
