package location

import "time"

// Fix is the most recent known device location for an employee, written by
// the location ingestion service.
type Fix struct {
	EmployeeID string
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Timestamp  time.Time
}
