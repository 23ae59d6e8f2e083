package contacts

import "errors"

var (
	// ErrInvalidPhone is returned when the phone number fails validation
	// before any store access.
	ErrInvalidPhone = errors.New("invalid phone number format: must be at least 10 digits")

	// ErrInvalidAlias is returned when the alias is empty or too long.
	ErrInvalidAlias = errors.New("alias must be between 1 and 100 characters")

	// ErrNotesTooLong is returned when notes exceed the limit.
	ErrNotesTooLong = errors.New("notes cannot exceed 500 characters")

	// ErrInvalidSearchBy is returned for an unknown search scope.
	ErrInvalidSearchBy = errors.New("searchBy must be one of alias, phone, both")

	// ErrDuplicateLink is returned when the user already linked this
	// contact. The link count does not change.
	ErrDuplicateLink = errors.New("you have already added this contact")

	// ErrLinkNotFound is returned when no link with that id is owned by
	// the caller. Foreign and missing links are indistinguishable.
	ErrLinkNotFound = errors.New("contact not found")

	// ErrDuplicateIdentity signals a lost directory-creation race. It is
	// retried internally and never surfaces to callers.
	ErrDuplicateIdentity = errors.New("contact identity already exists")
)
