package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shiftsense/timeclock-backend-go/internal/domain/jobsite"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
)

type jobSiteRepository struct {
	db *database.DB
}

func NewJobSiteRepository(db *database.DB) jobsite.Repository {
	return &jobSiteRepository{db: db}
}

// GetByID implements jobsite.Repository.
func (r *jobSiteRepository) GetByID(ctx context.Context, id string) (jobsite.JobSite, error) {
	query := `
		SELECT id, company_id, name, latitude, longitude, radius_meters,
		       timezone, created_at, updated_at
		FROM job_sites
		WHERE id = $1
	`

	var j jobsite.JobSite
	err := r.db.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.CompanyID, &j.Name, &j.Latitude, &j.Longitude, &j.RadiusMeters,
		&j.Timezone, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return jobsite.JobSite{}, jobsite.ErrJobSiteNotFound
		}
		return jobsite.JobSite{}, fmt.Errorf("failed to get job site: %w", err)
	}

	return j, nil
}
