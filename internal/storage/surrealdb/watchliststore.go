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

// WatchlistStore persists one watchlist per user, keyed by user ID.
type WatchlistStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewWatchlistStore(db *surrealdb.DB, logger *common.Logger) *WatchlistStore {
	return &WatchlistStore{
		db:     db,
		logger: logger,
	}
}

func (s *WatchlistStore) GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error) {
	record, err := surrealdb.Select[models.Watchlist](ctx, s.db, surrealmodels.NewRecordID("watchlist", userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select watchlist: %w", err)
	}
	if record == nil || record.UserID == "" {
		return nil, interfaces.ErrNotFound
	}
	return record, nil
}

func (s *WatchlistStore) SaveWatchlist(ctx context.Context, w *models.Watchlist) error {
	sql := "UPSERT $rid CONTENT $watchlist"
	vars := map[string]any{
		"rid":       surrealmodels.NewRecordID("watchlist", w.UserID),
		"watchlist": w,
	}
	if _, err := surrealdb.Query[[]models.Watchlist](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}
