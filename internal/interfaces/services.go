package interfaces

import (
	"context"

	"github.com/tharwatech/mahfaza/internal/models"
)

// Subscription is a live snapshot stream. Updates delivers an initial full
// snapshot followed by replacement snapshots whenever the underlying data
// changes; consumers replace their working set wholesale, never merge.
// Close must be called on teardown to release the stream.
type Subscription[T any] interface {
	Updates() <-chan T
	Close()
}

// PortfolioService manages portfolios, holdings, and their valuation.
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, userID, name string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, userID, portfolioID string) error

	AddHolding(ctx context.Context, userID, portfolioID string, h *models.Holding) (string, error)
	RemoveHolding(ctx context.Context, userID, portfolioID, holdingID string) error

	// ValuePortfolio joins the portfolio's holdings with the latest catalog
	// snapshot and aggregates totals. Recomputed in full on every call.
	ValuePortfolio(ctx context.Context, userID, portfolioID string) (*models.PortfolioValuation, error)

	SubscribePortfolios(ctx context.Context, userID string) (Subscription[[]*models.Portfolio], error)
	SubscribeHoldings(ctx context.Context, userID, portfolioID string) (Subscription[[]*models.Holding], error)
	SubscribeValuation(ctx context.Context, userID, portfolioID string) (Subscription[*models.PortfolioValuation], error)
}

// CatalogService owns the market-data catalog lifecycle.
type CatalogService interface {
	// Catalog returns the latest catalog snapshot.
	Catalog(ctx context.Context) (*models.Catalog, error)
	// Refresh collects fresh entries from the market-data source and
	// replaces the stored catalog.
	Refresh(ctx context.Context) (*models.Catalog, error)
}

// StrategyService generates, stores, and streams AI strategies.
type StrategyService interface {
	// GenerateStrategy produces a strategy for the profile. A newer request
	// for the same user supersedes any in-flight one: the superseded
	// request's result is discarded, never applied late.
	GenerateStrategy(ctx context.Context, userID string, profile *models.ClientProfile) (*models.InvestmentStrategy, error)
	SaveStrategy(ctx context.Context, userID string, s *models.InvestmentStrategy) error
	ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error)
	SubscribeStrategies(ctx context.Context, userID string) (Subscription[[]*models.InvestmentStrategy], error)

	AnalyzeStock(ctx context.Context, ticker string) (*models.StockAnalysis, error)
}

// WatchlistService manages per-user ticker watchlists.
type WatchlistService interface {
	GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error)
	AddTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error)
	RemoveTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error)
	SubscribeWatchlist(ctx context.Context, userID string) (Subscription[*models.Watchlist], error)
}
