package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tanvirio/contactbook/internal/database"
	"github.com/tanvirio/contactbook/internal/observability/metrics"
	"github.com/tanvirio/contactbook/internal/phone"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Service orchestrates the contact linking workflow: normalize the phone,
// find-or-create the shared directory entry, and create the user link,
// all inside one transaction.
type Service struct {
	store      *Store
	tx         database.TxRunner
	normalizer phone.Normalizer
	logger     *logging.Logger
	metrics    *metrics.ContactMetrics
}

// NewService wires the linking service.
func NewService(store *Store, tx database.TxRunner, normalizer phone.Normalizer, logger *logging.Logger, m *metrics.ContactMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		tx:         tx,
		normalizer: normalizer,
		logger:     logger,
		metrics:    m,
	}
}

// AddContact links a contact for the user. The find-or-create, the
// duplicate-link check, and the link insert commit or roll back together;
// a failed attempt leaves no partial link behind. The directory entry it
// may create is shared global state, which is intentional.
func (s *Service) AddContact(ctx context.Context, userID uuid.UUID, req *AddContactRequest) (*Link, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !s.normalizer.IsValid(req.PhoneNumber) {
		return nil, ErrInvalidPhone
	}
	normalized := s.normalizer.Normalize(req.PhoneNumber)

	start := time.Now()
	var link *Link
	err := s.tx.RunInTx(ctx, func(q database.Querier) error {
		contact, created, err := s.store.FindOrCreateContact(ctx, q, req.PhoneNumber, normalized)
		if err != nil {
			return err
		}
		s.metrics.ObserveDirectory(created)

		exists, err := s.store.LinkExists(ctx, q, userID, contact.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateLink
		}

		l := &Link{
			UserID:    userID,
			ContactID: contact.ID,
			Alias:     req.Alias,
			Labels:    req.Labels,
			Notes:     req.Notes,
		}
		if err := s.store.InsertLink(ctx, q, l); err != nil {
			return err
		}
		l.Contact = *contact
		link = l
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateLink) {
			s.metrics.ObserveLink("add", "duplicate")
		} else {
			s.metrics.ObserveLink("add", "error")
		}
		return nil, err
	}

	s.metrics.ObserveLink("add", "ok")
	s.metrics.ObserveLinkingDuration(time.Since(start).Seconds())
	s.logger.Info("contact linked",
		"link_id", link.ID,
		"identity", link.Contact.NormalizedPhone,
	)
	return link, nil
}

// List returns the caller's links, filtered and paginated.
func (s *Service) List(ctx context.Context, userID uuid.UUID, query ListQuery) (*ListResult, error) {
	if err := query.Normalize(); err != nil {
		return nil, err
	}
	s.metrics.ObserveSearch(query.SearchBy)

	links, total, err := s.store.List(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	if links == nil {
		links = []*Link{}
	}

	totalPages := total / int64(query.Limit)
	if total%int64(query.Limit) != 0 {
		totalPages++
	}
	return &ListResult{
		Contacts: links,
		Pagination: Pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateLink applies a partial update to a link the caller owns. An
// empty patch writes nothing and returns the link as is.
func (s *Service) UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch *UpdateContactRequest) (*Link, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.store.GetLink(ctx, nil, userID, linkID)
	}

	link, err := s.store.UpdateLink(ctx, userID, linkID, patch)
	if err != nil {
		s.metrics.ObserveLink("update", statusFor(err))
		return nil, err
	}
	s.metrics.ObserveLink("update", "ok")
	return link, nil
}

// DeleteLink removes a link the caller owns. The shared contact stays.
func (s *Service) DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error {
	if err := s.store.DeleteLink(ctx, userID, linkID); err != nil {
		s.metrics.ObserveLink("delete", statusFor(err))
		return err
	}
	s.metrics.ObserveLink("delete", "ok")
	return nil
}

// ImportContacts links a batch of entries for the user on an existing
// transaction. Invalid numbers and in-batch duplicates are skipped with a
// warning rather than failing the batch; partial success is the desired
// behavior on this path. Store failures still abort, since the
// surrounding transaction is already doomed. Returns the number of links
// created.
func (s *Service) ImportContacts(ctx context.Context, q database.Querier, userID uuid.UUID, entries []ImportEntry) (int, error) {
	imported := 0
	for _, entry := range entries {
		if !s.normalizer.IsValid(entry.PhoneNumber) {
			s.logger.Warn("import: invalid phone skipped", "alias", entry.Alias)
			s.metrics.ObserveImportSkipped()
			continue
		}
		alias := entry.Alias
		if alias == "" || len(alias) > MaxAliasLength {
			s.logger.Warn("import: invalid alias skipped")
			s.metrics.ObserveImportSkipped()
			continue
		}

		normalized := s.normalizer.Normalize(entry.PhoneNumber)
		contact, created, err := s.store.FindOrCreateContact(ctx, q, entry.PhoneNumber, normalized)
		if err != nil {
			return imported, err
		}
		s.metrics.ObserveDirectory(created)

		link := &Link{UserID: userID, ContactID: contact.ID, Alias: alias}
		inserted, err := s.store.InsertLinkIfAbsent(ctx, q, link)
		if err != nil {
			return imported, err
		}
		if !inserted {
			s.logger.Warn("import: duplicate contact skipped", "identity", normalized)
			s.metrics.ObserveImportSkipped()
			continue
		}
		imported++
	}
	return imported, nil
}

func statusFor(err error) string {
	if errors.Is(err, ErrLinkNotFound) {
		return "not_found"
	}
	return "error"
}
