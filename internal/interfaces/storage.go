// Package interfaces defines contracts between Mahfaza components
package interfaces

import (
	"context"
	"errors"

	"github.com/tharwatech/mahfaza/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// StorageManager provides access to all storage areas
type StorageManager interface {
	CatalogStore() CatalogStore
	PortfolioStore() PortfolioStore
	StrategyStore() StrategyStore
	WatchlistStore() WatchlistStore
	UserStore() UserStore
	Close() error
}

// CatalogStore persists the market-data catalog. Written only by the
// refresh job; valuation reads the latest snapshot.
type CatalogStore interface {
	SaveAssets(ctx context.Context, assets []*models.Asset) error
	SaveCities(ctx context.Context, cities []*models.RealEstateCity) error
	GetCatalog(ctx context.Context) (*models.Catalog, error)
}

// PortfolioStore persists portfolios and their holdings. Holdings are
// immutable records: creation and deletion only, no partial updates.
type PortfolioStore interface {
	CreatePortfolio(ctx context.Context, p *models.Portfolio) error
	GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
	// DeletePortfolio removes the portfolio and all of its holdings.
	DeletePortfolio(ctx context.Context, userID, portfolioID string) error

	AddHolding(ctx context.Context, h *models.Holding) error
	ListHoldings(ctx context.Context, portfolioID string) ([]*models.Holding, error)
	RemoveHolding(ctx context.Context, portfolioID, holdingID string) error
}

// StrategyStore persists AI-generated strategies. Strategies are immutable
// once saved and are listed newest-first.
type StrategyStore interface {
	SaveStrategy(ctx context.Context, s *models.InvestmentStrategy) error
	ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error)
}

// WatchlistStore persists per-user watchlists.
type WatchlistStore interface {
	GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error)
	SaveWatchlist(ctx context.Context, w *models.Watchlist) error
}

// UserStore persists dashboard accounts.
type UserStore interface {
	SaveUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}
