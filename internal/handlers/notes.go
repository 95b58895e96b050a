package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/interfaces"
	"github.com/bobmcallan/vire-research/internal/models"
	"github.com/go-playground/validator/v10"
)

// NoteHandler serves personal research notes. Reads are public (active
// entries only); mutations require an admin session.
type NoteHandler struct {
	storage  interfaces.NoteStorage
	jwt      auth.JWT
	validate *validator.Validate
	logger   *common.Logger
}

// NewNoteHandler creates a new research note handler.
func NewNoteHandler(storage interfaces.NoteStorage, jwt auth.JWT, logger *common.Logger) *NoteHandler {
	return &NoteHandler{
		storage:  storage,
		jwt:      jwt,
		validate: validator.New(),
		logger:   logger,
	}
}

// CollectionHandler dispatches GET (list) and POST (create) on /api/notes.
func (h *NoteHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *NoteHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if claims, ok := auth.FromRequest(r, h.jwt); ok && claims.Role == auth.RoleAdmin {
		activeOnly = false
	}

	items, err := h.storage.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notes")
		WriteError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"notes": items})
}

func (h *NoteHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAdmin(w, r, h.jwt)
	if !ok {
		return
	}

	var n models.ResearchNote
	if err := DecodeBody(r, &n); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n.ID = ""
	n.CreatedBy = claims.Subject
	n.Ticker = strings.ToUpper(strings.TrimSpace(n.Ticker))

	if err := h.validate.Struct(&n); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.Save(r.Context(), &n); err != nil {
		h.logger.Error().Err(err).Msg("failed to save note")
		WriteError(w, http.StatusInternalServerError, "failed to save note")
		return
	}
	WriteJSON(w, http.StatusCreated, &n)
}

// SubrouteHandler dispatches GET/PUT/DELETE on /api/notes/{id}.
func (h *NoteHandler) SubrouteHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/notes/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *NoteHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		h.logger.Error().Str("id", id).Err(err).Msg("failed to get note")
		WriteError(w, http.StatusInternalServerError, "failed to get note")
		return
	}

	// Inactive notes stay admin-only.
	if !n.IsActive {
		if _, ok := requireAdmin(w, r, h.jwt); !ok {
			return
		}
	}
	WriteJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r, h.jwt); !ok {
		return
	}

	existing, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "note not found")
			return
		}
		h.logger.Error().Str("id", id).Err(err).Msg("failed to get note")
		WriteError(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	var n models.ResearchNote
	if err := DecodeBody(r, &n); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n.ID = existing.ID
	n.CreatedAt = existing.CreatedAt
	n.CreatedBy = existing.CreatedBy
	n.Ticker = strings.ToUpper(strings.TrimSpace(n.Ticker))

	if err := h.validate.Struct(&n); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.Save(r.Context(), &n); err != nil {
		h.logger.Error().Str("id", id).Err(err).Msg("failed to save note")
		WriteError(w, http.StatusInternalServerError, "failed to update note")
		return
	}
	WriteJSON(w, http.StatusOK, &n)
}

func (h *NoteHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r, h.jwt); !ok {
		return
	}

	if err := h.storage.Delete(r.Context(), id); err != nil {
		h.logger.Error().Str("id", id).Err(err).Msg("failed to delete note")
		WriteError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
