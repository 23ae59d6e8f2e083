package users

import (
	"time"

	"github.com/google/uuid"
)

// Account status values.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User represents an account record. PasswordHash never leaves the
// package boundary in API responses.
type User struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	NeedsPasswordChange bool       `json:"needs_password_change"`
	PasswordChangedAt   *time.Time `json:"-"`
	Status              string     `json:"status"`
	IsDeleted           bool       `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Active reports whether the account can authenticate.
func (u *User) Active() bool {
	return !u.IsDeleted && u.Status == StatusActive
}
