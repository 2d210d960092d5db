package jobsite

import "errors"

var ErrJobSiteNotFound = errors.New("job site not found")
