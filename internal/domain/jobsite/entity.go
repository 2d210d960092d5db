package jobsite

import "time"

// JobSite is a physical work location with a circular geofence.
type JobSite struct {
	ID           string
	CompanyID    string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
