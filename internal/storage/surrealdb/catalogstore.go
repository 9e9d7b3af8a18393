package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/models"
)

// CatalogStore persists catalog assets and city prices. One record per
// ticker/city key; a refresh upserts the full set.
type CatalogStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewCatalogStore(db *surrealdb.DB, logger *common.Logger) *CatalogStore {
	return &CatalogStore{
		db:     db,
		logger: logger,
	}
}

func (s *CatalogStore) SaveAssets(ctx context.Context, assets []*models.Asset) error {
	sql := "UPSERT $rid CONTENT $asset"
	for _, a := range assets {
		vars := map[string]any{
			"rid":   surrealmodels.NewRecordID("asset", models.NormalizeTicker(a.Ticker)),
			"asset": a,
		}
		if _, err := surrealdb.Query[[]models.Asset](ctx, s.db, sql, vars); err != nil {
			return fmt.Errorf("failed to save asset %s: %w", a.Ticker, err)
		}
	}
	s.logger.Info().Int("assets", len(assets)).Msg("Catalog assets saved")
	return nil
}

func (s *CatalogStore) SaveCities(ctx context.Context, cities []*models.RealEstateCity) error {
	sql := "UPSERT $rid CONTENT $city"
	for _, c := range cities {
		vars := map[string]any{
			"rid":  surrealmodels.NewRecordID("city", models.NormalizeCityKey(c.Key)),
			"city": c,
		}
		if _, err := surrealdb.Query[[]models.RealEstateCity](ctx, s.db, sql, vars); err != nil {
			return fmt.Errorf("failed to save city %s: %w", c.Key, err)
		}
	}
	s.logger.Info().Int("cities", len(cities)).Msg("Catalog cities saved")
	return nil
}

// GetCatalog loads all catalog entries and returns an indexed snapshot.
func (s *CatalogStore) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	assetResults, err := surrealdb.Query[[]models.Asset](ctx, s.db, "SELECT * FROM asset", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}

	cityResults, err := surrealdb.Query[[]models.RealEstateCity](ctx, s.db, "SELECT * FROM city", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}

	var assets []*models.Asset
	var refreshedAt time.Time
	if assetResults != nil && len(*assetResults) > 0 {
		for i := range (*assetResults)[0].Result {
			a := &(*assetResults)[0].Result[i]
			assets = append(assets, a)
			if a.LastUpdated.After(refreshedAt) {
				refreshedAt = a.LastUpdated
			}
		}
	}

	var cities []*models.RealEstateCity
	if cityResults != nil && len(*cityResults) > 0 {
		for i := range (*cityResults)[0].Result {
			cities = append(cities, &(*cityResults)[0].Result[i])
		}
	}

	return models.NewCatalog(assets, cities, refreshedAt), nil
}
