package profile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanvirio/contactbook/internal/database"
)

// Repository defines the interface for profile storage. Create accepts a
// Querier so registration can run it inside the account transaction.
type Repository interface {
	Create(ctx context.Context, q database.Querier, p *Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, userID uuid.UUID, patch *UpdateRequest) (*Profile, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests and
// local development without Postgres.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*Profile
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[uuid.UUID]*Profile)}
}

// Create stores a new profile keyed by user id.
func (r *InMemoryRepository) Create(ctx context.Context, _ database.Querier, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.OtherEmails == nil {
		p.OtherEmails = []string{}
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	clone := *p
	r.profiles[p.UserID] = &clone
	return nil
}

// GetByUserID fetches the profile for a user.
func (r *InMemoryRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

// Update applies a partial update to the user's profile.
func (r *InMemoryRepository) Update(ctx context.Context, userID uuid.UUID, patch *UpdateRequest) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.OtherEmails != nil {
		p.OtherEmails = patch.OtherEmails
	}
	p.UpdatedAt = time.Now().UTC()

	clone := *p
	return &clone, nil
}
