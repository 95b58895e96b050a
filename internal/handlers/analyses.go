package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/vire-research/internal/artifacts"
	"github.com/bobmcallan/vire-research/internal/common"
)

// defaultLatestLimit caps the homepage feed when no limit is given.
const defaultLatestLimit = 10

// AnalysisHandler serves the analysis snapshot index and contents.
type AnalysisHandler struct {
	store  *artifacts.Store
	logger *common.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(store *artifacts.Store, logger *common.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		store:  store,
		logger: logger,
	}
}

// fileListEntry is one row of an index listing.
type fileListEntry struct {
	Filename  string `json:"filename"`
	Ticker    string `json:"ticker,omitempty"`
	Timestamp string `json:"timestamp"`
}

func toListEntries(records []artifacts.FileInfo) []fileListEntry {
	out := make([]fileListEntry, 0, len(records))
	for _, r := range records {
		out = append(out, fileListEntry{
			Filename:  r.Filename,
			Ticker:    r.Ticker,
			Timestamp: r.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

// ListHandler handles GET /api/analyses with optional ticker= and date=
// filters. A missing analysis directory yields an empty listing.
func (h *AnalysisHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	var (
		records []artifacts.FileInfo
		err     error
	)
	ix := h.store.AnalysisIndex()
	switch {
	case r.URL.Query().Get("ticker") != "":
		records, err = ix.ByTicker(r.URL.Query().Get("ticker"))
	case r.URL.Query().Get("date") != "":
		records, err = ix.ByDate(r.URL.Query().Get("date"))
	default:
		records, err = ix.Records()
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analysis files")
		WriteError(w, http.StatusInternalServerError, "failed to get analysis files")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"files": toListEntries(records)})
}

// LatestHandler handles GET /api/analyses/latest?limit=N: the homepage
// feed, ordered by file modification time. Each entry is read and parsed;
// invalid or unreadable snapshots are dropped from the feed.
func (h *AnalysisHandler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := defaultLatestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.store.AnalysisIndex().Latest(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list latest analyses")
		WriteError(w, http.StatusInternalServerError, "failed to get latest analyses")
		return
	}

	type feedEntry struct {
		Filename  string      `json:"filename"`
		Timestamp string      `json:"timestamp"`
		Data      interface{} `json:"data"`
	}

	items := make([]feedEntry, 0, len(records))
	for _, result := range h.store.ReadAnalyses(r.Context(), records) {
		if !result.Data.IsValid() {
			h.logger.Debug().Str("file", result.FileInfo.Filename).Msg("dropping invalid analysis from feed")
			continue
		}
		items = append(items, feedEntry{
			Filename:  result.FileInfo.Filename,
			Timestamp: result.FileInfo.Timestamp.Format(time.RFC3339),
			Data:      result.Data,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"analyses": items})
}

// TickersHandler handles GET /api/analyses/tickers.
func (h *AnalysisHandler) TickersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	tickers, err := h.store.AnalysisIndex().Tickers()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analysis tickers")
		WriteError(w, http.StatusInternalServerError, "failed to get tickers")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"tickers": tickers})
}

// DatesHandler handles GET /api/analyses/dates.
func (h *AnalysisHandler) DatesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	dates, err := h.store.AnalysisIndex().Dates()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list analysis dates")
		WriteError(w, http.StatusInternalServerError, "failed to get dates")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// GetHandler handles GET /api/analyses/{filename}: one parsed snapshot.
// Records missing ticker, analyst_signals, or decision are structurally
// unusable for rendering and are reported as 422.
func (h *AnalysisHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if filename == "" {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	info, ok := artifacts.ParseFilename(filename)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid filename format")
		return
	}

	data, err := h.store.ReadAnalysis(r.Context(), filename)
	if err != nil {
		var parseErr *artifacts.ParseError
		switch {
		case errors.Is(err, artifacts.ErrNotFound):
			WriteError(w, http.StatusNotFound, "analysis file not found")
		case errors.As(err, &parseErr):
			h.logger.Error().Str("file", filename).Err(err).Msg("failed to parse analysis file")
			WriteError(w, http.StatusInternalServerError, "failed to read analysis file")
		default:
			h.logger.Error().Str("file", filename).Err(err).Msg("failed to read analysis file")
			WriteError(w, http.StatusInternalServerError, "failed to read analysis file")
		}
		return
	}

	if !data.IsValid() {
		WriteError(w, http.StatusUnprocessableEntity, "analysis file is missing required fields")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"fileInfo": map[string]string{
			"filename":  info.Filename,
			"timestamp": info.Timestamp.Format(time.RFC3339),
		},
	})
}
