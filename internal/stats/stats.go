// Package stats computes address-book statistics for the profile page.
// It runs read-only aggregate queries over database/sql so it can share
// the reporting connection rather than the transactional pgx pool.
package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Stats summarizes one user's address book.
type Stats struct {
	TotalContacts  int `json:"total_contacts"`
	AddedThisWeek  int `json:"added_this_week"`
	DistinctLabels int `json:"distinct_labels"`
	SharedContacts int `json:"shared_contacts"`
}

// Service computes address-book stats.
type Service struct {
	db *sql.DB
}

// NewService creates a stats service on an existing connection.
func NewService(db *sql.DB) *Service {
	if db == nil {
		panic("stats: sql db required")
	}
	return &Service{db: db}
}

// ForUser computes the stats for one user.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	var out Stats

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_contacts WHERE user_id = $1`, userID,
	).Scan(&out.TotalContacts)
	if err != nil {
		return nil, fmt.Errorf("stats: count contacts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_contacts WHERE user_id = $1 AND created_at >= now() - interval '7 days'`, userID,
	).Scan(&out.AddedThisWeek)
	if err != nil {
		return nil, fmt.Errorf("stats: count recent contacts: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT label)
		 FROM user_contacts, unnest(labels) AS label
		 WHERE user_id = $1`, userID,
	).Scan(&out.DistinctLabels)
	if err != nil {
		return nil, fmt.Errorf("stats: count labels: %w", err)
	}

	// Contacts this user links that at least one other user also links.
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM user_contacts uc
		 WHERE uc.user_id = $1
		   AND EXISTS (
		     SELECT 1 FROM user_contacts o
		     WHERE o.contact_id = uc.contact_id AND o.user_id <> $1
		   )`, userID,
	).Scan(&out.SharedContacts)
	if err != nil {
		return nil, fmt.Errorf("stats: count shared contacts: %w", err)
	}

	return &out, nil
}
