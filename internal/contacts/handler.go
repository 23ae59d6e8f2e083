package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tanvirio/contactbook/internal/api/respond"
	"github.com/tanvirio/contactbook/internal/identity"
	"github.com/tanvirio/contactbook/pkg/logging"
)

// ContactService is the handler's view of the linking service.
type ContactService interface {
	AddContact(ctx context.Context, userID uuid.UUID, req *AddContactRequest) (*Link, error)
	List(ctx context.Context, userID uuid.UUID, query ListQuery) (*ListResult, error)
	UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch *UpdateContactRequest) (*Link, error)
	DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error
}

// Handler handles HTTP requests for the contact book.
type Handler struct {
	svc    ContactService
	logger *logging.Logger
}

// NewHandler creates a new contacts handler.
func NewHandler(svc ContactService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Add handles POST /api/contacts requests.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.svc.AddContact(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, "add contact", err)
		return
	}
	respond.JSON(w, http.StatusCreated, link)
}

// List handles GET /api/contacts and GET /api/contacts/search requests;
// both accept the same search, searchBy, page and limit parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	params := r.URL.Query()
	query := ListQuery{
		Search:   params.Get("search"),
		SearchBy: params.Get("searchBy"),
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(params.Get("limit")); err == nil {
		query.Limit = limit
	}

	result, err := h.svc.List(r.Context(), userID, query)
	if err != nil {
		h.writeServiceError(w, "list contacts", err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}

// Update handles PATCH /api/contacts/{id} requests.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	linkID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, ErrLinkNotFound.Error())
		return
	}

	var patch UpdateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), userID, linkID, &patch)
	if err != nil {
		h.writeServiceError(w, "update contact", err)
		return
	}
	respond.JSON(w, http.StatusOK, link)
}

// Delete handles DELETE /api/contacts/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	linkID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, ErrLinkNotFound.Error())
		return
	}

	if err := h.svc.DeleteLink(r.Context(), userID, linkID); err != nil {
		h.writeServiceError(w, "delete contact", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidAlias),
		errors.Is(err, ErrNotesTooLong),
		errors.Is(err, ErrInvalidSearchBy):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateLink):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrLinkNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("contacts: "+op+" failed", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
