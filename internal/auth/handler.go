package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tanvirio/contactbook/internal/api/respond"
	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/internal/profile"
	"github.com/tanvirio/contactbook/internal/users"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Handler handles HTTP requests for account auth.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /api/auth/register requests.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, "register", err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login requests.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, "login", err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// RefreshRequest is the payload for POST /api/auth/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /api/auth/refresh-token requests.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(w, "refresh", err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// ChangePasswordRequest is the payload for POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /api/auth/change-password requests. Runs
// behind the auth middleware.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeAuthError(w, "change password", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *Handler) writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrWrongPassword),
		errors.Is(err, profile.ErrInvalidName):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrDuplicateEmail):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenInvalid):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrAccountBlocked),
		errors.Is(err, ErrAccountDeleted):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("auth: "+op+" failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
