// Package database holds the shared Postgres access interfaces and the
// transactional unit-of-work helper used by multi-step mutations.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by a pool and a
// transaction. Store methods accept a Querier so they can participate in
// a caller-managed transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the pgx pool surface the application depends on. *pgxpool.Pool
// and pgxmock pools both satisfy it.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxRunner runs a function inside a single transaction boundary.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(q Querier) error) error
}

// Runner is the Pool-backed TxRunner. Any error from fn rolls the whole
// transaction back and is returned unchanged.
type Runner struct {
	pool Pool
}

// NewRunner wraps a pool in a transactional runner.
func NewRunner(pool Pool) *Runner {
	if pool == nil {
		panic("database: pool required")
	}
	return &Runner{pool: pool}
}

// RunInTx begins a transaction, runs fn against it, and commits. On any
// failure the transaction is rolled back and the original cause is
// propagated.
func (r *Runner) RunInTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("database: commit tx: %w", err)
	}
	return nil
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("database: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return pool, nil
}

// UniqueViolation is the Postgres SQLSTATE for unique constraint errors.
const UniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
