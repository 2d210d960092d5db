package schedule

import "errors"

var ErrShiftNotFound = errors.New("planned shift not found")
