package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/vire-research/internal/aggregate"
	"github.com/bobmcallan/vire-research/internal/artifacts"
	"github.com/bobmcallan/vire-research/internal/cache"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/models"
)

// BacktestHandler serves backtest artifact listings, contents, per-date
// summaries, and cross-backtest statistics.
type BacktestHandler struct {
	store  *artifacts.Store
	cache  *cache.BacktestCache
	logger *common.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(store *artifacts.Store, c *cache.BacktestCache, logger *common.Logger) *BacktestHandler {
	return &BacktestHandler{
		store:  store,
		cache:  c,
		logger: logger,
	}
}

// backtestListEntry is one row in the admin backtest listing.
type backtestListEntry struct {
	Filename         string `json:"filename"`
	Timestamp        string `json:"timestamp"`
	IsNewsIntegrated bool   `json:"isNewsIntegrated"`
}

// ListHandler handles GET /api/backtests. Unlike the rest of the artifact
// surface, a missing backtest directory here is a hard failure: this is the
// admin listing and silently serving an empty list would mask a broken
// deployment.
func (h *BacktestHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records, err := h.store.BacktestIndex().RecordsStrict()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list backtest files")
		WriteError(w, http.StatusInternalServerError, "failed to get backtest files")
		return
	}

	loaded := h.loadAll(r, records)
	files := make([]backtestListEntry, 0, len(records))
	for _, rec := range records {
		entry := backtestListEntry{
			Filename:  rec.Filename,
			Timestamp: rec.Timestamp.Format(time.RFC3339),
		}
		if data, ok := loaded[rec.Filename]; ok {
			entry.IsNewsIntegrated = data.IsNewsIntegrated()
		}
		files = append(files, entry)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// StatsHandler handles GET /api/backtests/stats: one summary row per
// readable backtest, newest first. Unreadable artifacts are skipped.
func (h *BacktestHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records, err := h.store.BacktestIndex().Records()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list backtest files")
		WriteError(w, http.StatusInternalServerError, "failed to get backtest stats")
		return
	}

	loaded := h.loadAll(r, records)
	stats := make([]aggregate.SummaryStat, 0, len(records))
	for _, rec := range records {
		data, ok := loaded[rec.Filename]
		if !ok {
			continue
		}
		stat := aggregate.Summarize(data)
		stat.Filename = rec.Filename
		stats = append(stats, stat)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// SubrouteHandler dispatches /api/backtests/{filename} and
// /api/backtests/{filename}/daily.
func (h *BacktestHandler) SubrouteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/backtests/")
	if rest == "" {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}

	if filename, ok := strings.CutSuffix(rest, "/daily"); ok {
		h.daily(w, r, filename)
		return
	}
	h.get(w, r, rest)
}

// get serves one parsed backtest artifact with its file metadata.
func (h *BacktestHandler) get(w http.ResponseWriter, r *http.Request, filename string) {
	info, ok := artifacts.ParseFilename(filename)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid filename format")
		return
	}

	data, err := h.load(r, info)
	if err != nil {
		h.writeReadError(w, filename, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":             data,
		"isNewsIntegrated": data.IsNewsIntegrated(),
		"fileInfo": map[string]string{
			"filename":  info.Filename,
			"timestamp": info.Timestamp.Format(time.RFC3339),
		},
	})
}

// daily serves the per-date join of portfolio value, return, trades, and
// news counts for one backtest.
func (h *BacktestHandler) daily(w http.ResponseWriter, r *http.Request, filename string) {
	info, ok := artifacts.ParseFilename(filename)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid filename format")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		WriteError(w, http.StatusBadRequest, "date parameter is required")
		return
	}

	data, err := h.load(r, info)
	if err != nil {
		h.writeReadError(w, filename, err)
		return
	}

	snapshot := aggregate.JoinByDate(data.PortfolioHistory, aggregate.Trades(data.DailyDecisions), data.NewsData, date)
	WriteJSON(w, http.StatusOK, snapshot)
}

// writeReadError maps artifact read failures to HTTP statuses.
func (h *BacktestHandler) writeReadError(w http.ResponseWriter, filename string, err error) {
	var parseErr *artifacts.ParseError
	switch {
	case errors.Is(err, artifacts.ErrNotFound):
		WriteError(w, http.StatusNotFound, "backtest file not found")
	case errors.As(err, &parseErr):
		h.logger.Error().Str("file", filename).Err(err).Msg("failed to parse backtest file")
		WriteError(w, http.StatusInternalServerError, "failed to read backtest file")
	default:
		h.logger.Error().Str("file", filename).Err(err).Msg("failed to read backtest file")
		WriteError(w, http.StatusInternalServerError, "failed to read backtest file")
	}
}

// load reads one backtest through the parsed-artifact cache.
func (h *BacktestHandler) load(r *http.Request, info artifacts.FileInfo) (*models.BacktestData, error) {
	key, ok := h.cacheKey(info.Filename)
	if ok {
		if data, hit := h.cache.Get(key); hit {
			return data, nil
		}
	}

	data, err := h.store.ReadBacktest(r.Context(), info.Filename)
	if err != nil {
		return nil, err
	}
	if ok {
		h.cache.Set(key, data)
	}
	return data, nil
}

// loadAll resolves records to parsed artifacts, serving cache hits first
// and batch-reading the misses. Unreadable records are absent from the map.
func (h *BacktestHandler) loadAll(r *http.Request, records []artifacts.FileInfo) map[string]*models.BacktestData {
	loaded := make(map[string]*models.BacktestData, len(records))
	var misses []artifacts.FileInfo

	for _, rec := range records {
		key, ok := h.cacheKey(rec.Filename)
		if ok {
			if data, hit := h.cache.Get(key); hit {
				loaded[rec.Filename] = data
				continue
			}
		}
		misses = append(misses, rec)
	}

	for _, result := range h.store.ReadBacktests(r.Context(), misses) {
		loaded[result.FileInfo.Filename] = result.Data
		if key, ok := h.cacheKey(result.FileInfo.Filename); ok {
			h.cache.Set(key, result.Data)
		}
	}
	return loaded
}

// cacheKey builds a filename+mtime cache key. Returns false when the file
// cannot be stat'ed; such reads bypass the cache.
func (h *BacktestHandler) cacheKey(filename string) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	fi, err := os.Stat(filepath.Join(h.store.BacktestIndex().Dir(), filename))
	if err != nil {
		return "", false
	}
	return cache.MakeKey(filename, fi.ModTime()), true
}
