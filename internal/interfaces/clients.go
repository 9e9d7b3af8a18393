package interfaces

import (
	"context"

	"github.com/tharwatech/mahfaza/internal/models"
)

// GeminiClient generates strategy documents and stock analyses. The model
// is treated as an opaque text-generation service with a typed contract;
// callers must not assume its numeric output is internally consistent.
type GeminiClient interface {
	GenerateStrategy(ctx context.Context, profile *models.ClientProfile) (*models.InvestmentStrategy, error)
	AnalyzeStock(ctx context.Context, asset *models.Asset) (string, error)
}

// MarketDataClient fetches catalog entries from the upstream market-data
// source. Used only by the catalog refresh job.
type MarketDataClient interface {
	FetchAssets(ctx context.Context) ([]*models.Asset, error)
	FetchCities(ctx context.Context) ([]*models.RealEstateCity, error)
}
