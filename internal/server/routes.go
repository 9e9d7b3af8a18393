package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/tharwatech/mahfaza/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Users and auth
	mux.HandleFunc("/api/users", s.handleUserCreate)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	// Catalog
	mux.HandleFunc("/api/catalog", s.handleCatalogGet)
	mux.HandleFunc("/api/catalog/refresh", s.handleCatalogRefresh)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)

	// Strategies
	mux.HandleFunc("/api/strategies/generate", s.handleStrategyGenerate)
	mux.HandleFunc("/api/strategies", s.handleStrategies)

	// Stock analysis
	mux.HandleFunc("/api/stocks/", s.routeStocks)

	// Watchlist
	mux.HandleFunc("/api/watchlist/", s.routeWatchlist)
	mux.HandleFunc("/api/watchlist", s.handleWatchlistGet)

	// Live valuation stream
	mux.HandleFunc("/api/ws/portfolios/", s.handleValuationWS)
}

// routePortfolios dispatches /api/portfolios/{id}/* to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		s.handlePortfolios(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch {
	case subpath == "":
		s.handlePortfolio(w, r, id)
	case subpath == "valuation":
		s.handlePortfolioValuation(w, r, id)
	case subpath == "holdings":
		s.handleHoldings(w, r, id)
	case strings.HasPrefix(subpath, "holdings/"):
		holdingID := strings.TrimPrefix(subpath, "holdings/")
		s.handleHolding(w, r, id, holdingID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeStocks dispatches /api/stocks/{ticker}/analysis.
func (s *Server) routeStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/stocks/")
	if ticker, ok := strings.CutSuffix(path, "/analysis"); ok && ticker != "" {
		s.handleStockAnalysis(w, r, ticker)
		return
	}
	WriteError(w, http.StatusNotFound, "Not found")
}

// routeWatchlist dispatches /api/watchlist/{ticker}.
func (s *Server) routeWatchlist(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	if ticker == "" {
		s.handleWatchlistGet(w, r)
		return
	}
	s.handleWatchlistTicker(w, r, ticker)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
