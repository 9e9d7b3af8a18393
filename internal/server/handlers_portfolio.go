package server

import (
	"net/http"

	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

// handlePortfolios handles GET (list) and POST (create) on /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		portfolios, err := s.app.PortfolioService.ListPortfolios(r.Context(), userID)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list portfolios")
			WriteError(w, http.StatusInternalServerError, "failed to list portfolios")
			return
		}
		if portfolios == nil {
			portfolios = []*models.Portfolio{}
		}
		WriteJSON(w, http.StatusOK, portfolios)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.PortfolioService.CreatePortfolio(r.Context(), userID, req.Name)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, p)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolio handles DELETE /api/portfolios/{id}.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.app.PortfolioService.DeletePortfolio(r.Context(), userID, portfolioID); err != nil {
		if err == interfaces.ErrNotFound {
			WriteError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("Failed to delete portfolio")
		WriteError(w, http.StatusInternalServerError, "failed to delete portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handlePortfolioValuation handles GET /api/portfolios/{id}/valuation.
func (s *Server) handlePortfolioValuation(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	v, err := s.app.PortfolioService.ValuePortfolio(r.Context(), userID, portfolioID)
	if err != nil {
		if err == interfaces.ErrNotFound {
			WriteError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		s.logger.Error().Err(err).Str("portfolio", portfolioID).Msg("Failed to value portfolio")
		WriteError(w, http.StatusInternalServerError, "failed to value portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// holdingRequest is the JSON shape for adding a holding. The category decides
// which identifying fields are read.
type holdingRequest struct {
	Category      models.AssetCategory `json:"category"`
	Ticker        string               `json:"ticker"`
	Quantity      float64              `json:"quantity"`
	CityKey       string               `json:"city_key"`
	AreaSqM       float64              `json:"area_sqm"`
	PurchasePrice float64              `json:"purchase_price"`
}

func (req *holdingRequest) toHolding() *models.Holding {
	switch req.Category {
	case models.CategoryStocks:
		return models.NewStockHolding(req.Ticker, req.Quantity, req.PurchasePrice)
	case models.CategoryRealEstate:
		return models.NewRealEstateHolding(req.CityKey, req.AreaSqM, req.PurchasePrice)
	case models.CategoryGold:
		return models.NewGoldHolding(req.PurchasePrice)
	case models.CategorySavingsCertificates:
		return models.NewCertificateHolding(req.Ticker, req.PurchasePrice)
	default:
		return &models.Holding{Category: req.Category, PurchasePrice: req.PurchasePrice}
	}
}

// handleHoldings handles POST /api/portfolios/{id}/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req holdingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	id, err := s.app.PortfolioService.AddHolding(r.Context(), userID, portfolioID, req.toHolding())
	if err != nil {
		if err == interfaces.ErrNotFound {
			WriteError(w, http.StatusNotFound, "portfolio not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleHolding handles DELETE /api/portfolios/{id}/holdings/{holdingID}.
func (s *Server) handleHolding(w http.ResponseWriter, r *http.Request, portfolioID, holdingID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.app.PortfolioService.RemoveHolding(r.Context(), userID, portfolioID, holdingID); err != nil {
		if err == interfaces.ErrNotFound {
			WriteError(w, http.StatusNotFound, "holding not found")
			return
		}
		s.logger.Error().Err(err).Str("holding", holdingID).Msg("Failed to remove holding")
		WriteError(w, http.StatusInternalServerError, "failed to remove holding")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
