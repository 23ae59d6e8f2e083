package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tanvirio/contactbook/internal/api/respond"
	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Handler handles HTTP requests for the account profile.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /api/profile requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	p, err := h.repo.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("profile: fetch failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// Update handles PATCH /api/profile requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var patch UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := patch.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var p *Profile
	var err error
	if patch.Empty() {
		p, err = h.repo.GetByUserID(r.Context(), userID)
	} else {
		p, err = h.repo.Update(r.Context(), userID, &patch)
	}
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("profile: update failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
