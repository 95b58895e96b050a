package server

import (
	"net/http"

	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/handlers"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	adminOnly := auth.RequireRole(s.app.JWT, handlers.WriteError, auth.RoleAdmin)

	// Artifact routes. The bare /api/backtests listing is the admin
	// maintenance view; everything below it is public.
	mux.HandleFunc("/api/backtests", adminOnly(s.app.BacktestHandler.ListHandler))
	mux.HandleFunc("/api/backtests/stats", s.app.BacktestHandler.StatsHandler)
	mux.HandleFunc("/api/backtests/", s.app.BacktestHandler.SubrouteHandler)

	mux.HandleFunc("/api/analyses", s.app.AnalysisHandler.ListHandler)
	mux.HandleFunc("/api/analyses/latest", s.app.AnalysisHandler.LatestHandler)
	mux.HandleFunc("/api/analyses/tickers", s.app.AnalysisHandler.TickersHandler)
	mux.HandleFunc("/api/analyses/dates", s.app.AnalysisHandler.DatesHandler)
	mux.HandleFunc("/api/analyses/", s.app.AnalysisHandler.GetHandler)

	// Content routes (reads public, mutations admin-gated in the handlers)
	mux.HandleFunc("/api/news", s.app.NewsHandler.CollectionHandler)
	mux.HandleFunc("/api/news/", s.app.NewsHandler.SubrouteHandler)
	mux.HandleFunc("/api/notes", s.app.NoteHandler.CollectionHandler)
	mux.HandleFunc("/api/notes/", s.app.NoteHandler.SubrouteHandler)

	// Session routes
	mux.HandleFunc("/api/auth/login", s.app.AuthHandler.LoginHandler)
	mux.HandleFunc("/api/auth/logout", s.app.AuthHandler.LogoutHandler)
	mux.HandleFunc("/api/auth/me", s.app.AuthHandler.MeHandler)

	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
