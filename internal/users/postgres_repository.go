package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tanvirio/contactbook/internal/database"
)

// PostgresRepository stores accounts in Postgres.
type PostgresRepository struct {
	pool database.Pool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool database.Pool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, needs_password_change, password_changed_at, status, is_deleted, created_at, updated_at`

// Create inserts a new account row. A unique violation on the email index
// maps to ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, q database.Querier, user *User) error {
	if q == nil {
		q = r.pool
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = StatusActive
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	query := `
		INSERT INTO users (id, email, password_hash, needs_password_change, status, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.NeedsPasswordChange,
		user.Status,
		user.IsDeleted,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "users_email_key") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("users: insert failed: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by email, deleted or not; callers decide
// how to treat deleted accounts.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetByID fetches an account by id, deleted or not; callers decide how to
// treat deleted accounts.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// UpdatePassword replaces the hash, stamps password_changed_at, and clears
// the needs_password_change flag.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2,
			password_changed_at = $3,
			needs_password_change = FALSE,
			updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.NeedsPasswordChange,
		&u.PasswordChangedAt,
		&u.Status,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &u, nil
}
