package stats

import (
	"net/http"

	"github.com/tanvirio/contactbook/internal/api/respond"
	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// Handler serves the address-book stats endpoint.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a stats handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Get handles GET /api/profile/stats requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	out, err := h.svc.ForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("stats: query failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
