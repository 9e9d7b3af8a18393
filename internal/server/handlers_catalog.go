package server

import (
	"net/http"
	"sort"

	"github.com/tharwatech/mahfaza/internal/models"
)

// handleCatalogGet handles GET /api/catalog — the current asset and city catalog.
func (s *Server) handleCatalogGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	catalog, err := s.app.CatalogService.Catalog(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load catalog")
		WriteError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	WriteJSON(w, http.StatusOK, catalogResponse(catalog))
}

// handleCatalogRefresh handles POST /api/catalog/refresh — authenticated
// on-demand trigger for the refresh job.
func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}

	catalog, err := s.app.CatalogService.Refresh(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("On-demand catalog refresh failed")
		WriteError(w, http.StatusBadGateway, "catalog refresh failed")
		return
	}

	WriteJSON(w, http.StatusOK, catalogResponse(catalog))
}

// catalogResponse renders a catalog snapshot with stable ordering.
func catalogResponse(catalog *models.Catalog) map[string]interface{} {
	assets := make([]*models.Asset, 0, len(catalog.Assets))
	for _, a := range catalog.Assets {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Ticker < assets[j].Ticker })

	cities := make([]*models.RealEstateCity, 0, len(catalog.Cities))
	for _, c := range catalog.Cities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Key < cities[j].Key })

	return map[string]interface{}{
		"assets":       assets,
		"cities":       cities,
		"refreshed_at": catalog.RefreshedAt,
	}
}
