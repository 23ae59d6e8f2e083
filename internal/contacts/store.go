package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tanvirio/contactbook/internal/database"
)

// Store persists the contact directory and user links in Postgres.
// Mutating methods accept a Querier so the linking service can run them
// inside one transaction.
type Store struct {
	pool database.Pool
}

// NewStore initializes a store backed by a pgx pool.
func NewStore(pool database.Pool) *Store {
	if pool == nil {
		panic("contacts: pgx pool required")
	}
	return &Store{pool: pool}
}

const linkColumns = `
	uc.id, uc.user_id, uc.contact_id, uc.alias, uc.labels, uc.notes,
	uc.created_at, uc.updated_at,
	c.id, c.phone_number, c.normalized_phone, c.created_at`

const linkFrom = ` FROM user_contacts uc JOIN contacts c ON c.id = uc.contact_id`

// FindOrCreateContact returns the directory entry for the identity,
// creating it on first encounter. A lost creation race (unique violation
// on the identity index) is resolved by re-fetching the winner, so the
// caller never sees ErrDuplicateIdentity.
func (s *Store) FindOrCreateContact(ctx context.Context, q database.Querier, rawPhone, normalizedPhone string) (*Contact, bool, error) {
	if q == nil {
		q = s.pool
	}

	contact, err := s.getContactByIdentity(ctx, q, normalizedPhone)
	if err == nil {
		return contact, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("contacts: lookup identity: %w", err)
	}

	contact, err = s.insertContact(ctx, q, rawPhone, normalizedPhone)
	if err == nil {
		return contact, true, nil
	}
	if !errors.Is(err, ErrDuplicateIdentity) {
		return nil, false, err
	}

	// Someone else created it between our lookup and insert.
	contact, err = s.getContactByIdentity(ctx, q, normalizedPhone)
	if err != nil {
		return nil, false, fmt.Errorf("contacts: re-fetch after identity race: %w", err)
	}
	return contact, false, nil
}

func (s *Store) getContactByIdentity(ctx context.Context, q database.Querier, normalizedPhone string) (*Contact, error) {
	query := `SELECT id, phone_number, normalized_phone, created_at FROM contacts WHERE normalized_phone = $1`
	var c Contact
	err := q.QueryRow(ctx, query, normalizedPhone).Scan(&c.ID, &c.PhoneNumber, &c.NormalizedPhone, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// insertContact attempts to create the directory row. ON CONFLICT DO
// NOTHING keeps a lost race from aborting the enclosing transaction; the
// missing RETURNING row is surfaced as ErrDuplicateIdentity so the caller
// re-fetches the winner.
func (s *Store) insertContact(ctx context.Context, q database.Querier, rawPhone, normalizedPhone string) (*Contact, error) {
	c := Contact{
		ID:              uuid.New(),
		PhoneNumber:     rawPhone,
		NormalizedPhone: normalizedPhone,
	}
	query := `
		INSERT INTO contacts (id, phone_number, normalized_phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (normalized_phone) DO NOTHING
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query, c.ID, c.PhoneNumber, c.NormalizedPhone).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("contacts: insert contact: %w", err)
	}
	return &c, nil
}

// LinkExists reports whether the user already links this contact.
func (s *Store) LinkExists(ctx context.Context, q database.Querier, userID, contactID uuid.UUID) (bool, error) {
	if q == nil {
		q = s.pool
	}
	var one int
	err := q.QueryRow(ctx, `SELECT 1 FROM user_contacts WHERE user_id = $1 AND contact_id = $2`, userID, contactID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("contacts: link exists: %w", err)
	}
	return true, nil
}

// InsertLink creates a user link. The unique constraint on
// (user_id, contact_id) backstops the duplicate check under concurrency
// and maps to ErrDuplicateLink.
func (s *Store) InsertLink(ctx context.Context, q database.Querier, link *Link) error {
	if q == nil {
		q = s.pool
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.Labels == nil {
		link.Labels = []string{}
	}
	query := `
		INSERT INTO user_contacts (id, user_id, contact_id, alias, labels, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		link.ID,
		link.UserID,
		link.ContactID,
		link.Alias,
		link.Labels,
		link.Notes,
	).Scan(&link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "user_contacts_user_id_contact_id_key") {
			return ErrDuplicateLink
		}
		return fmt.Errorf("contacts: insert link: %w", err)
	}
	return nil
}

// InsertLinkIfAbsent creates a link unless the user already has one for
// this contact. Used by the bulk-import path, where a duplicate must not
// abort the surrounding transaction.
func (s *Store) InsertLinkIfAbsent(ctx context.Context, q database.Querier, link *Link) (bool, error) {
	if q == nil {
		q = s.pool
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	if link.Labels == nil {
		link.Labels = []string{}
	}
	query := `
		INSERT INTO user_contacts (id, user_id, contact_id, alias, labels, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, contact_id) DO NOTHING
	`
	tag, err := q.Exec(ctx, query,
		link.ID,
		link.UserID,
		link.ContactID,
		link.Alias,
		link.Labels,
		link.Notes,
	)
	if err != nil {
		return false, fmt.Errorf("contacts: insert link if absent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetLink fetches one link joined with its contact, scoped to the owner.
func (s *Store) GetLink(ctx context.Context, q database.Querier, userID, linkID uuid.UUID) (*Link, error) {
	if q == nil {
		q = s.pool
	}
	query := `SELECT` + linkColumns + linkFrom + ` WHERE uc.id = $1 AND uc.user_id = $2`
	link, err := scanLink(q.QueryRow(ctx, query, linkID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("contacts: select link: %w", err)
	}
	return link, nil
}

// UpdateLink applies a partial update scoped to the owner and returns the
// updated link joined with its contact. Ownership is part of the lookup
// predicate, so foreign links look identical to missing ones.
func (s *Store) UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch *UpdateContactRequest) (*Link, error) {
	sets := []string{"updated_at = now()"}
	args := []any{linkID, userID}
	argNum := 3

	if patch.Alias != nil {
		sets = append(sets, fmt.Sprintf("alias = $%d", argNum))
		args = append(args, *patch.Alias)
		argNum++
	}
	if patch.Labels != nil {
		sets = append(sets, fmt.Sprintf("labels = $%d", argNum))
		args = append(args, patch.Labels)
		argNum++
	}
	if patch.Notes != nil {
		sets = append(sets, fmt.Sprintf("notes = $%d", argNum))
		args = append(args, *patch.Notes)
		argNum++
	}

	query := `UPDATE user_contacts SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2`
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contacts: update link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrLinkNotFound
	}

	return s.GetLink(ctx, nil, userID, linkID)
}

// DeleteLink removes a link, never the shared contact. Same owner-scoped
// predicate as UpdateLink.
func (s *Store) DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_contacts WHERE id = $1 AND user_id = $2`, linkID, userID)
	if err != nil {
		return fmt.Errorf("contacts: delete link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// List returns the caller's links joined with their contacts, filtered,
// newest first, along with the pre-pagination total.
func (s *Store) List(ctx context.Context, userID uuid.UUID, query ListQuery) ([]*Link, int64, error) {
	where, args := buildListFilter(userID, query)

	var total int64
	countSQL := `SELECT COUNT(*)` + linkFrom + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contacts: count links: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	pageSQL := fmt.Sprintf(`SELECT%s%s%s ORDER BY uc.created_at DESC LIMIT $%d OFFSET $%d`,
		linkColumns, linkFrom, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, pageSQL, append(args, query.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("contacts: list links: %w", err)
	}
	defer rows.Close()

	var links []*Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("contacts: scan link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("contacts: iterate links: %w", err)
	}
	return links, total, nil
}

// buildListFilter assembles the WHERE clause for List. Search terms match
// case-insensitively as substrings against the alias and/or both phone
// forms, with OR semantics across the selected scopes.
func buildListFilter(userID uuid.UUID, query ListQuery) (string, []any) {
	where := ` WHERE uc.user_id = $1`
	args := []any{userID}

	if query.Search == "" {
		return where, args
	}

	args = append(args, "%"+escapeLike(query.Search)+"%")
	n := len(args)

	var conditions []string
	if query.SearchBy == SearchByAlias || query.SearchBy == SearchByBoth {
		conditions = append(conditions, fmt.Sprintf("uc.alias ILIKE $%d", n))
	}
	if query.SearchBy == SearchByPhone || query.SearchBy == SearchByBoth {
		conditions = append(conditions,
			fmt.Sprintf("c.phone_number ILIKE $%d", n),
			fmt.Sprintf("c.normalized_phone ILIKE $%d", n),
		)
	}
	return where + ` AND (` + strings.Join(conditions, " OR ") + `)`, args
}

// escapeLike neutralizes LIKE metacharacters in user-supplied terms.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)
	return term
}

func scanLink(row pgx.Row) (*Link, error) {
	var l Link
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.ContactID,
		&l.Alias,
		&l.Labels,
		&l.Notes,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.Contact.ID,
		&l.Contact.PhoneNumber,
		&l.Contact.NormalizedPhone,
		&l.Contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
