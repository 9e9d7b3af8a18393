package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

// PortfolioStore persists portfolios and their holdings. Holdings are
// immutable: added and removed, never updated in place.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{
		db:     db,
		logger: logger,
	}
}

func (s *PortfolioStore) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	sql := "UPSERT $rid CONTENT $portfolio"
	vars := map[string]any{
		"rid":       surrealmodels.NewRecordID("portfolio", p.ID),
		"portfolio": p,
	}
	if _, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

func (s *PortfolioStore) GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error) {
	record, err := surrealdb.Select[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID("portfolio", portfolioID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	if record == nil || record.ID == "" {
		return nil, interfaces.ErrNotFound
	}
	// Ownership check: a portfolio is visible only to its owner.
	if record.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	return record, nil
}

func (s *PortfolioStore) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Portfolio](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	var portfolios []*models.Portfolio
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			portfolios = append(portfolios, &(*results)[0].Result[i])
		}
	}
	return portfolios, nil
}

// DeletePortfolio removes the portfolio and cascades to its holdings.
func (s *PortfolioStore) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	if _, err := s.GetPortfolio(ctx, userID, portfolioID); err != nil {
		return err
	}

	holdingsSQL := "DELETE holding WHERE portfolio_id = $portfolio_id"
	vars := map[string]any{"portfolio_id": portfolioID}
	if _, err := surrealdb.Query[any](ctx, s.db, holdingsSQL, vars); err != nil {
		return fmt.Errorf("failed to delete portfolio holdings: %w", err)
	}

	if _, err := surrealdb.Delete[models.Portfolio](ctx, s.db, surrealmodels.NewRecordID("portfolio", portfolioID)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	s.logger.Info().Str("portfolio", portfolioID).Msg("Portfolio deleted with holdings")
	return nil
}

func (s *PortfolioStore) AddHolding(ctx context.Context, h *models.Holding) error {
	sql := "UPSERT $rid CONTENT $holding"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("holding", h.ID),
		"holding": h,
	}
	if _, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to add holding: %w", err)
	}
	return nil
}

func (s *PortfolioStore) ListHoldings(ctx context.Context, portfolioID string) ([]*models.Holding, error) {
	sql := "SELECT * FROM holding WHERE portfolio_id = $portfolio_id ORDER BY created_at ASC"
	vars := map[string]any{"portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	var holdings []*models.Holding
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			holdings = append(holdings, &(*results)[0].Result[i])
		}
	}
	return holdings, nil
}

func (s *PortfolioStore) RemoveHolding(ctx context.Context, portfolioID, holdingID string) error {
	holding, err := surrealdb.Select[models.Holding](ctx, s.db, surrealmodels.NewRecordID("holding", holdingID))
	if err != nil {
		if isNotFoundError(err) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to select holding: %w", err)
	}
	if holding == nil || holding.ID == "" || holding.PortfolioID != portfolioID {
		return interfaces.ErrNotFound
	}

	if _, err := surrealdb.Delete[models.Holding](ctx, s.db, surrealmodels.NewRecordID("holding", holdingID)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to remove holding: %w", err)
	}
	return nil
}
