package profile

import "errors"

// ErrProfileNotFound is returned when the user has no profile row.
var ErrProfileNotFound = errors.New("profile not found")
