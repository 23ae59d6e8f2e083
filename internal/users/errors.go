package users

import "errors"

var (
	// ErrUserNotFound is returned when no matching account exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("user with this email already exists")
)
