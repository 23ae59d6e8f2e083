package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tanvirio/contactbook/internal/database"
)

// PostgresRepository stores profiles in Postgres.
type PostgresRepository struct {
	pool database.Pool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool database.Pool) *PostgresRepository {
	if pool == nil {
		panic("profile: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts the profile row, typically inside the registration
// transaction.
func (r *PostgresRepository) Create(ctx context.Context, q database.Querier, p *Profile) error {
	if q == nil {
		q = r.pool
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.OtherEmails == nil {
		p.OtherEmails = []string{}
	}

	query := `
		INSERT INTO profiles (id, user_id, first_name, last_name, other_emails)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.FirstName,
		p.LastName,
		p.OtherEmails,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("profile: insert failed: %w", err)
	}
	return nil
}

const profileColumns = `p.id, p.user_id, u.email, p.first_name, p.last_name, p.other_emails, p.created_at, p.updated_at`

// GetByUserID fetches the profile joined with the account email.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, userID))
}

// Update applies a partial update and returns the fresh row joined with
// the account email.
func (r *PostgresRepository) Update(ctx context.Context, userID uuid.UUID, patch *UpdateRequest) (*Profile, error) {
	sets := []string{"updated_at = now()"}
	args := []any{userID}
	argNum := 2

	if patch.FirstName != nil {
		sets = append(sets, fmt.Sprintf("first_name = $%d", argNum))
		args = append(args, strings.TrimSpace(*patch.FirstName))
		argNum++
	}
	if patch.LastName != nil {
		sets = append(sets, fmt.Sprintf("last_name = $%d", argNum))
		args = append(args, strings.TrimSpace(*patch.LastName))
		argNum++
	}
	if patch.OtherEmails != nil {
		sets = append(sets, fmt.Sprintf("other_emails = $%d", argNum))
		args = append(args, patch.OtherEmails)
		argNum++
	}

	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") + ` WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("profile: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProfileNotFound
	}

	return r.GetByUserID(ctx, userID)
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.OtherEmails,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile: select failed: %w", err)
	}
	return &p, nil
}
