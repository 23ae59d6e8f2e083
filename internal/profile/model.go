package profile

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength bounds first and last names, mirrored by the database
// constraints on the profiles table.
const MaxNameLength = 100

// Profile holds the user-facing account details. Email is read from the
// users table on fetch and is not writable through this package.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Email       string    `json:"email,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	OtherEmails []string  `json:"other_emails"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validation errors.
var (
	ErrInvalidName  = errors.New("first and last name must be between 1 and 100 characters")
	ErrInvalidEmail = errors.New("other_emails contains an invalid address")
)

// UpdateRequest is a partial profile update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	FirstName   *string  `json:"first_name,omitempty"`
	LastName    *string  `json:"last_name,omitempty"`
	OtherEmails []string `json:"other_emails,omitempty"`
}

// Validate checks the provided fields.
func (r *UpdateRequest) Validate() error {
	if r.FirstName != nil && !validName(*r.FirstName) {
		return ErrInvalidName
	}
	if r.LastName != nil && !validName(*r.LastName) {
		return ErrInvalidName
	}
	for _, email := range r.OtherEmails {
		if !strings.Contains(email, "@") {
			return ErrInvalidEmail
		}
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (r *UpdateRequest) Empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.OtherEmails == nil
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= MaxNameLength
}
