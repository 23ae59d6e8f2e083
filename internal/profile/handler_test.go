package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/pkg/logging"
)

func seedProfile(t *testing.T, repo *InMemoryRepository, userID uuid.UUID) *Profile {
	t.Helper()
	p := &Profile{
		UserID:      userID,
		Email:       "me@example.com",
		FirstName:   "Tanvir",
		LastName:    "Ahmed",
		OtherEmails: []string{"work@example.com"},
	}
	if err := repo.Create(context.Background(), nil, p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func TestGetProfile(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	seedProfile(t, repo, userID)
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p Profile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FirstName != "Tanvir" || p.Email != "me@example.com" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = req.WithContext(identity.WithUserID(req.Context(), uuid.New()))
	w := httptest.NewRecorder()
	handler.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	seedProfile(t, repo, userID)
	handler := NewHandler(repo, logging.Default())

	body, _ := json.Marshal(UpdateRequest{FirstName: strPtr("Tanveer")})
	req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader(body))
	req = req.WithContext(identity.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p Profile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FirstName != "Tanveer" {
		t.Errorf("first name not updated: %s", p.FirstName)
	}
	// Untouched fields survive a partial patch.
	if p.LastName != "Ahmed" {
		t.Errorf("last name changed: %s", p.LastName)
	}
}

func TestUpdateProfileEmptyPatchIsARead(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	seedProfile(t, repo, userID)
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader([]byte(`{}`)))
	req = req.WithContext(identity.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	handler.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p Profile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FirstName != "Tanvir" || p.LastName != "Ahmed" {
		t.Errorf("empty patch changed the profile: %+v", p)
	}
}

func TestUpdateProfileRejectsBadInput(t *testing.T) {
	repo := NewInMemoryRepository()
	userID := uuid.New()
	seedProfile(t, repo, userID)
	handler := NewHandler(repo, logging.Default())

	tests := []struct {
		name string
		body string
	}{
		{"empty first name", `{"first_name":""}`},
		{"bad other email", `{"other_emails":["not-an-email"]}`},
		{"malformed json", `{`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewReader([]byte(tc.body)))
			req = req.WithContext(identity.WithUserID(req.Context(), userID))
			w := httptest.NewRecorder()
			handler.Update(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
