package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanvirio/contactbook/internal/contacts"
	"github.com/tanvirio/contactbook/internal/database"
	"github.com/tanvirio/contactbook/internal/observability/metrics"
	"github.com/tanvirio/contactbook/internal/profile"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ContactImporter links a user's initial contacts inside the
// registration transaction.
type ContactImporter interface {
	ImportContacts(ctx context.Context, q database.Querier, userID uuid.UUID, entries []contacts.ImportEntry) (int, error)
}

// Mailer sends account lifecycle emails. All sends are best effort.
type Mailer interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendPasswordChanged(ctx context.Context, toEmail, firstName string) error
}

// Service implements registration, login, token refresh and password
// changes.
type Service struct {
	users      users.Repository
	profiles   profile.Repository
	importer   ContactImporter
	tokens     *TokenManager
	refresh    TokenStore
	tx         database.TxRunner
	mailer     Mailer
	bcryptCost int
	logger     *logging.Logger
	metrics    *metrics.AuthMetrics
}

// Config wires the service dependencies. Importer and Mailer are
// optional.
type Config struct {
	Users      users.Repository
	Profiles   profile.Repository
	Importer   ContactImporter
	Tokens     *TokenManager
	Refresh    TokenStore
	Tx         database.TxRunner
	Mailer     Mailer
	BcryptCost int
	Logger     *logging.Logger
	Metrics    *metrics.AuthMetrics
}

// NewService creates the auth service.
func NewService(cfg Config) *Service {
	if cfg.Users == nil || cfg.Profiles == nil || cfg.Tokens == nil || cfg.Refresh == nil || cfg.Tx == nil {
		panic("auth: users, profiles, tokens, refresh store and tx runner required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      cfg.Users,
		profiles:   cfg.Profiles,
		importer:   cfg.Importer,
		tokens:     cfg.Tokens,
		refresh:    cfg.Refresh,
		tx:         cfg.Tx,
		mailer:     cfg.Mailer,
		bcryptCost: cfg.BcryptCost,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// RegisterRequest is the payload for creating an account. Contacts is an
// optional initial import from the caller's device.
type RegisterRequest struct {
	Email     string                 `json:"email"`
	Password  string                 `json:"password"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Contacts  []contacts.ImportEntry `json:"contacts,omitempty"`
}

// Validate checks the registration payload.
func (r *RegisterRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if len(r.Password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return profile.ErrInvalidName
	}
	return nil
}

// AuthResponse is returned by Register, Login and Refresh.
type AuthResponse struct {
	User             *users.User `json:"user"`
	Tokens           TokenPair   `json:"tokens"`
	ImportedContacts int         `json:"imported_contacts,omitempty"`
}

// Register creates the account, its profile and any initial contacts in
// one transaction, then issues a token pair. The welcome email never
// blocks or fails registration.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}
	imported := 0

	err = s.tx.RunInTx(ctx, func(q database.Querier) error {
		if err := s.users.Create(ctx, q, user); err != nil {
			return err
		}
		p := &profile.Profile{
			UserID:    user.ID,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
		}
		if err := s.profiles.Create(ctx, q, p); err != nil {
			return err
		}
		if s.importer != nil && len(req.Contacts) > 0 {
			imported, err = s.importer.ImportContacts(ctx, q, user.ID, req.Contacts)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			s.metrics.ObserveRegistration("duplicate")
		} else {
			s.metrics.ObserveRegistration("error")
		}
		return nil, err
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRegistration("ok")
	s.logger.Info("user registered", "user_id", user.ID, "imported_contacts", imported)

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, strings.TrimSpace(req.FirstName)); err != nil {
			s.logger.Warn("welcome email failed", "error", err, "user_id", user.ID)
		}
	}

	return &AuthResponse{User: user, Tokens: pair, ImportedContacts: imported}, nil
}

// Login authenticates by email and password and issues a token pair.
// Unknown emails surface as not found; deleted and blocked accounts are
// refused before the password is checked.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			s.metrics.ObserveLogin("not_found")
			return nil, err
		}
		s.metrics.ObserveLogin("error")
		return nil, err
	}
	if !user.Active() {
		if user.IsDeleted {
			s.metrics.ObserveLogin("deleted")
			return nil, ErrAccountDeleted
		}
		s.metrics.ObserveLogin("blocked")
		return nil, ErrAccountBlocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.ObserveLogin("invalid")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, err
	}

	s.metrics.ObserveLogin("ok")
	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResponse{User: user, Tokens: pair}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. Tokens issued before the last password change
// are rejected even if still present in the store.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.metrics.ObserveTokenRefresh("invalid")
		return nil, ErrTokenInvalid
	}
	userID := claims.UserID()

	valid, err := s.refresh.IsValid(ctx, userID, claims.ID)
	if err != nil {
		s.metrics.ObserveTokenRefresh("error")
		return nil, err
	}
	if !valid {
		s.metrics.ObserveTokenRefresh("revoked")
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.metrics.ObserveTokenRefresh("invalid")
		return nil, ErrTokenInvalid
	}
	if user.IsDeleted {
		s.metrics.ObserveTokenRefresh("invalid")
		return nil, ErrAccountDeleted
	}
	if user.Status == users.StatusBlocked {
		s.metrics.ObserveTokenRefresh("invalid")
		return nil, ErrAccountBlocked
	}
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		claims.IssuedAt.Time.Before(*user.PasswordChangedAt) {
		s.metrics.ObserveTokenRefresh("revoked")
		return nil, ErrTokenInvalid
	}

	if err := s.refresh.Revoke(ctx, userID, claims.ID); err != nil {
		s.metrics.ObserveTokenRefresh("error")
		return nil, err
	}
	pair, err := s.issuePair(ctx, userID)
	if err != nil {
		s.metrics.ObserveTokenRefresh("error")
		return nil, err
	}

	s.metrics.ObserveTokenRefresh("ok")
	return &AuthResponse{User: user, Tokens: pair}, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token for the user.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsDeleted {
		return ErrAccountDeleted
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash), time.Now().UTC()); err != nil {
		return err
	}
	if err := s.refresh.RevokeAll(ctx, userID); err != nil {
		s.logger.Error("revoke refresh tokens failed", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("password changed", "user_id", userID)

	if s.mailer != nil {
		if err := s.mailer.SendPasswordChanged(ctx, user.Email, ""); err != nil {
			s.logger.Warn("password changed email failed", "error", err, "user_id", userID)
		}
	}
	return nil
}

func (s *Service) issuePair(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, jti, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refresh.Save(ctx, userID, jti, s.tokens.RefreshTTL()); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
