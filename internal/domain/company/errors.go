package company

import "errors"

var ErrSettingsNotFound = errors.New("company settings not found")
