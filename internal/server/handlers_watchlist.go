package server

import (
	"net/http"
)

// handleWatchlistGet handles GET /api/watchlist.
func (s *Server) handleWatchlistGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	wl, err := s.app.WatchlistService.GetWatchlist(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get watchlist")
		WriteError(w, http.StatusInternalServerError, "failed to get watchlist")
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}

// handleWatchlistTicker handles PUT (add) and DELETE (remove) on
// /api/watchlist/{ticker}.
func (s *Server) handleWatchlistTicker(w http.ResponseWriter, r *http.Request, ticker string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		wl, err := s.app.WatchlistService.AddTicker(r.Context(), userID, ticker)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodDelete:
		wl, err := s.app.WatchlistService.RemoveTicker(r.Context(), userID, ticker)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}
