package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/models"
)

// StrategyStore persists AI-generated strategies. Strategies are written
// once and never mutated.
type StrategyStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewStrategyStore(db *surrealdb.DB, logger *common.Logger) *StrategyStore {
	return &StrategyStore{
		db:     db,
		logger: logger,
	}
}

func (s *StrategyStore) SaveStrategy(ctx context.Context, strategy *models.InvestmentStrategy) error {
	sql := "UPSERT $rid CONTENT $strategy"
	vars := map[string]any{
		"rid":      surrealmodels.NewRecordID("strategy", strategy.ID),
		"strategy": strategy,
	}
	if _, err := surrealdb.Query[[]models.InvestmentStrategy](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	s.logger.Info().Str("user", strategy.UserID).Str("strategy", strategy.ID).Msg("Strategy saved")
	return nil
}

// ListStrategies returns the user's strategies newest-first.
func (s *StrategyStore) ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error) {
	sql := "SELECT * FROM strategy WHERE user_id = $user_id ORDER BY created_at DESC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.InvestmentStrategy](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}

	var strategies []*models.InvestmentStrategy
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			strategies = append(strategies, &(*results)[0].Result[i])
		}
	}
	return strategies, nil
}
