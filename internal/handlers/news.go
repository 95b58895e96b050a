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

// NewsHandler serves the editor-authored news surface. Reads are public
// (published entries only); mutations require an admin session.
type NewsHandler struct {
	storage  interfaces.NewsStorage
	jwt      auth.JWT
	validate *validator.Validate
	logger   *common.Logger
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(storage interfaces.NewsStorage, jwt auth.JWT, logger *common.Logger) *NewsHandler {
	return &NewsHandler{
		storage:  storage,
		jwt:      jwt,
		validate: validator.New(),
		logger:   logger,
	}
}

// requireAdmin resolves the session and writes the failure response when
// the caller is not an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request, jwt auth.JWT) (auth.Claims, bool) {
	claims, ok := auth.FromRequest(r, jwt)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "not authenticated")
		return auth.Claims{}, false
	}
	if claims.Role != auth.RoleAdmin {
		WriteError(w, http.StatusForbidden, "forbidden")
		return auth.Claims{}, false
	}
	return claims, true
}

// CollectionHandler dispatches GET (list) and POST (create) on /api/news.
func (h *NewsHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list returns published news for the public, everything for admins.
func (h *NewsHandler) list(w http.ResponseWriter, r *http.Request) {
	publishedOnly := true
	if claims, ok := auth.FromRequest(r, h.jwt); ok && claims.Role == auth.RoleAdmin {
		publishedOnly = false
	}

	items, err := h.storage.List(r.Context(), publishedOnly)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list news")
		WriteError(w, http.StatusInternalServerError, "failed to list news")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"news": items})
}

// create stores a new news event authored by the session user.
func (h *NewsHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireAdmin(w, r, h.jwt)
	if !ok {
		return
	}

	var n models.News
	if err := DecodeBody(r, &n); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n.ID = ""
	n.CreatedBy = claims.Subject
	for i := range n.AffectedAssets {
		n.AffectedAssets[i].Ticker = strings.ToUpper(strings.TrimSpace(n.AffectedAssets[i].Ticker))
	}

	if err := h.validate.Struct(&n); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.Save(r.Context(), &n); err != nil {
		h.logger.Error().Err(err).Msg("failed to save news")
		WriteError(w, http.StatusInternalServerError, "failed to save news")
		return
	}
	WriteJSON(w, http.StatusCreated, &n)
}

// SubrouteHandler dispatches GET/PUT/DELETE on /api/news/{id}.
func (h *NewsHandler) SubrouteHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/news/")
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

func (h *NewsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	n, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "news not found")
			return
		}
		h.logger.Error().Str("id", id).Err(err).Msg("failed to get news")
		WriteError(w, http.StatusInternalServerError, "failed to get news")
		return
	}

	// Unpublished entries stay admin-only.
	if !n.IsPublished {
		if _, ok := requireAdmin(w, r, h.jwt); !ok {
			return
		}
	}
	WriteJSON(w, http.StatusOK, n)
}

func (h *NewsHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r, h.jwt); !ok {
		return
	}

	existing, err := h.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "news not found")
			return
		}
		h.logger.Error().Str("id", id).Err(err).Msg("failed to get news")
		WriteError(w, http.StatusInternalServerError, "failed to update news")
		return
	}

	var n models.News
	if err := DecodeBody(r, &n); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n.ID = existing.ID
	n.CreatedAt = existing.CreatedAt
	n.CreatedBy = existing.CreatedBy
	n.PublishedAt = existing.PublishedAt
	for i := range n.AffectedAssets {
		n.AffectedAssets[i].Ticker = strings.ToUpper(strings.TrimSpace(n.AffectedAssets[i].Ticker))
	}

	if err := h.validate.Struct(&n); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.storage.Save(r.Context(), &n); err != nil {
		h.logger.Error().Str("id", id).Err(err).Msg("failed to save news")
		WriteError(w, http.StatusInternalServerError, "failed to update news")
		return
	}
	WriteJSON(w, http.StatusOK, &n)
}

func (h *NewsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireAdmin(w, r, h.jwt); !ok {
		return
	}

	if err := h.storage.Delete(r.Context(), id); err != nil {
		h.logger.Error().Str("id", id).Err(err).Msg("failed to delete news")
		WriteError(w, http.StatusInternalServerError, "failed to delete news")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
