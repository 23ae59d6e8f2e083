package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanvirio/contactbook/internal/auth"
	"github.com/tanvirio/contactbook/internal/contacts"
	"github.com/tanvirio/contactbook/internal/database"
	"github.com/tanvirio/contactbook/internal/profile"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

type passthroughTx struct{}

func (passthroughTx) RunInTx(_ context.Context, fn func(q database.Querier) error) error {
	return fn(nil)
}

// fixedContacts serves canned responses so routing can be tested without
// Postgres.
type fixedContacts struct{}

func (fixedContacts) AddContact(_ context.Context, _ uuid.UUID, req *contacts.AddContactRequest) (*contacts.Link, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &contacts.Link{ID: uuid.New(), Alias: req.Alias}, nil
}

func (fixedContacts) List(context.Context, uuid.UUID, contacts.ListQuery) (*contacts.ListResult, error) {
	return &contacts.ListResult{Contacts: []*contacts.Link{}}, nil
}

func (fixedContacts) UpdateLink(context.Context, uuid.UUID, uuid.UUID, *contacts.UpdateContactRequest) (*contacts.Link, error) {
	return nil, contacts.ErrLinkNotFound
}

func (fixedContacts) DeleteLink(context.Context, uuid.UUID, uuid.UUID) error {
	return contacts.ErrLinkNotFound
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error", "")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	userRepo := users.NewInMemoryRepository()
	profileRepo := profile.NewInMemoryRepository()
	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	authSvc := auth.NewService(auth.Config{
		Users:      userRepo,
		Profiles:   profileRepo,
		Tokens:     tokens,
		Refresh:    auth.NewRedisTokenStore(client),
		Tx:         passthroughTx{},
		BcryptCost: bcrypt.MinCost,
		Logger:     logger,
	})

	return New(&Config{
		Logger:          logger,
		AuthHandler:     auth.NewHandler(authSvc, logger),
		ContactsHandler: contacts.NewHandler(fixedContacts{}, logger),
		ProfileHandler:  profile.NewHandler(profileRepo, logger),
		Tokens:          tokens,
		Users:           userRepo,
	})
}

func registerAndGetToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"email":      "me@example.com",
		"password":   "correct horse",
		"first_name": "Tanvir",
		"last_name":  "Ahmed",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	var resp auth.AuthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Tokens.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestRouter(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestContactsRequireAuth(t *testing.T) {
	handler := newTestRouter(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestRegisterThenUseProtectedEndpoints(t *testing.T) {
	handler := newTestRouter(t)
	token := registerAndGetToken(t, handler)

	// Contacts list.
	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("list contacts: %d %s", w.Code, w.Body.String())
	}

	// Search alias route.
	req = httptest.NewRequest(http.MethodGet, "/api/contacts/search?search=raf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("search contacts: %d", w.Code)
	}

	// Profile created at registration.
	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get profile: %d %s", w.Code, w.Body.String())
	}
}

func TestContactCRUDRoutes(t *testing.T) {
	handler := newTestRouter(t)
	token := registerAndGetToken(t, handler)

	body, _ := json.Marshal(contacts.AddContactRequest{PhoneNumber: "+8801712345678", Alias: "Rafiq"})
	req := httptest.NewRequest(http.MethodPost, "/api/contacts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("add contact: %d %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/contacts/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing contact: %d", w.Code)
	}
}
