package auth

import "errors"

var (
	// ErrInvalidCredentials is returned on a failed login. Unknown email
	// and wrong password are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountBlocked is returned when the account status forbids
	// authenticating.
	ErrAccountBlocked = errors.New("account is blocked")

	// ErrAccountDeleted is returned when the account has been soft
	// deleted.
	ErrAccountDeleted = errors.New("account has been deleted")

	// ErrTokenInvalid is returned for malformed, expired, revoked or
	// otherwise unusable tokens.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrWeakPassword is returned when a password fails the minimum
	// length check.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidEmail is returned for an unusable email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWrongPassword is returned when the current password check fails
	// on a password change.
	ErrWrongPassword = errors.New("current password is incorrect")
)
