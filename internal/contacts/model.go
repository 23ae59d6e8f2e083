package contacts

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Alias and notes length limits, mirrored by the database constraints.
const (
	MaxAliasLength = 100
	MaxNotesLength = 500
)

// Contact is a globally shared directory record for one phone identity.
// There is at most one Contact per normalized phone, ever; the raw
// phone_number is the formatting as first seen and is never rewritten.
type Contact struct {
	ID              uuid.UUID `json:"id"`
	PhoneNumber     string    `json:"phone_number"`
	NormalizedPhone string    `json:"normalized_phone"`
	CreatedAt       time.Time `json:"created_at"`
}

// Link is a user-owned alias/labels/notes record pointing at a shared
// Contact. The (UserID, ContactID) pair is unique.
type Link struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	ContactID uuid.UUID `json:"-"`
	Alias     string    `json:"alias"`
	Labels    []string  `json:"labels"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Contact   Contact   `json:"contact"`
}

// AddContactRequest is the payload for linking a new contact.
type AddContactRequest struct {
	PhoneNumber string   `json:"phone_number"`
	Alias       string   `json:"alias"`
	Labels      []string `json:"labels,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Validate checks the non-phone fields; phone validity is the service's
// concern because it depends on the configured normalizer. Limits count
// runes to match the char_length constraints in the schema.
func (r *AddContactRequest) Validate() error {
	if r.Alias == "" || utf8.RuneCountInString(r.Alias) > MaxAliasLength {
		return ErrInvalidAlias
	}
	if utf8.RuneCountInString(r.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// UpdateContactRequest is a partial update of a link. Nil fields are left
// unchanged; the contact reference is immutable through this path.
type UpdateContactRequest struct {
	Alias  *string  `json:"alias,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

// Validate checks the provided fields.
func (r *UpdateContactRequest) Validate() error {
	if r.Alias != nil && (*r.Alias == "" || utf8.RuneCountInString(*r.Alias) > MaxAliasLength) {
		return ErrInvalidAlias
	}
	if r.Notes != nil && utf8.RuneCountInString(*r.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (r *UpdateContactRequest) Empty() bool {
	return r.Alias == nil && r.Labels == nil && r.Notes == nil
}

// Search scopes accepted by list queries.
const (
	SearchByAlias = "alias"
	SearchByPhone = "phone"
	SearchByBoth  = "both"
)

// Default page size when the caller omits one.
const DefaultPageSize = 20

// ListQuery carries the list/search parameters.
type ListQuery struct {
	Search   string
	SearchBy string
	Page     int
	Limit    int
}

// Normalize applies defaults and validates the search scope. Page size is
// deliberately uncapped; callers control it.
func (q *ListQuery) Normalize() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	switch q.SearchBy {
	case "":
		q.SearchBy = SearchByBoth
	case SearchByAlias, SearchByPhone, SearchByBoth:
	default:
		return ErrInvalidSearchBy
	}
	return nil
}

// Pagination describes a result page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ListResult is a page of links plus the pre-pagination total.
type ListResult struct {
	Contacts   []*Link    `json:"contacts"`
	Pagination Pagination `json:"pagination"`
}

// ImportEntry is one contact in a bulk import (initial contacts supplied
// at registration).
type ImportEntry struct {
	PhoneNumber string `json:"phone_number"`
	Alias       string `json:"alias"`
}
