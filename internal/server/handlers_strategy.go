package server

import (
	"errors"
	"net/http"

	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/strategy"
)

// handleStrategyGenerate handles POST /api/strategies/generate.
func (s *Server) handleStrategyGenerate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var profile models.ClientProfile
	if !DecodeJSON(w, r, &profile) {
		return
	}

	generated, err := s.app.StrategyService.GenerateStrategy(r.Context(), userID, &profile)
	if err != nil {
		switch {
		case errors.Is(err, strategy.ErrSuperseded):
			// A newer request took over; this response carries no strategy.
			WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, strategy.ErrGeneratorUnavailable):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		default:
			WriteError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	WriteJSON(w, http.StatusOK, generated)
}

// handleStrategies handles GET (list) and POST (save) on /api/strategies.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		strategies, err := s.app.StrategyService.ListStrategies(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list strategies")
			WriteError(w, http.StatusInternalServerError, "failed to list strategies")
			return
		}
		if strategies == nil {
			strategies = []*models.InvestmentStrategy{}
		}
		WriteJSON(w, http.StatusOK, strategies)

	case http.MethodPost:
		var saved models.InvestmentStrategy
		if !DecodeJSON(w, r, &saved) {
			return
		}
		if err := s.app.StrategyService.SaveStrategy(r.Context(), userID, &saved); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, &saved)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleStockAnalysis handles GET /api/stocks/{ticker}/analysis.
func (s *Server) handleStockAnalysis(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}

	analysis, err := s.app.StrategyService.AnalyzeStock(r.Context(), ticker)
	if err != nil {
		switch {
		case err == interfaces.ErrNotFound:
			WriteError(w, http.StatusNotFound, "unknown ticker")
		case errors.Is(err, strategy.ErrGeneratorUnavailable):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.logger.Error().Err(err).Str("ticker", ticker).Msg("Stock analysis failed")
			WriteError(w, http.StatusBadGateway, "stock analysis failed")
		}
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}
