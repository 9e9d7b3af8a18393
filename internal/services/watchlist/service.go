// Package watchlist manages per-user ticker watchlists.
package watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/notify"
)

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService.
type Service struct {
	storage interfaces.StorageManager
	broker  *notify.Broker
	logger  *common.Logger
}

// NewService creates a new watchlist service.
func NewService(storage interfaces.StorageManager, broker *notify.Broker, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		broker:  broker,
		logger:  logger,
	}
}

func topicWatchlist(userID string) string { return "watchlist:" + userID }

// GetWatchlist returns the user's watchlist. A user who never added a ticker
// gets an empty watchlist, not an error.
func (s *Service) GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error) {
	wl, err := s.storage.WatchlistStore().GetWatchlist(ctx, userID)
	if err == interfaces.ErrNotFound {
		return &models.Watchlist{UserID: userID, Tickers: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	if wl.Tickers == nil {
		wl.Tickers = []string{}
	}
	return wl, nil
}

// AddTicker adds a ticker to the user's watchlist. Adding a ticker that is
// already present is a no-op.
func (s *Service) AddTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error) {
	t := models.NormalizeTicker(ticker)
	if t == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	wl, err := s.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl.Contains(t) {
		return wl, nil
	}

	wl.Tickers = append(wl.Tickers, t)
	wl.UpdatedAt = time.Now()
	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.broker.Publish(topicWatchlist(userID))
	s.logger.Info().Str("user", userID).Str("ticker", t).Msg("Ticker added to watchlist")
	return wl, nil
}

// RemoveTicker removes a ticker from the user's watchlist. Removing a ticker
// that is not present is a no-op.
func (s *Service) RemoveTicker(ctx context.Context, userID, ticker string) (*models.Watchlist, error) {
	t := models.NormalizeTicker(ticker)

	wl, err := s.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !wl.Contains(t) {
		return wl, nil
	}

	kept := wl.Tickers[:0]
	for _, existing := range wl.Tickers {
		if existing != t {
			kept = append(kept, existing)
		}
	}
	wl.Tickers = kept
	wl.UpdatedAt = time.Now()
	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.broker.Publish(topicWatchlist(userID))
	s.logger.Info().Str("user", userID).Str("ticker", t).Msg("Ticker removed from watchlist")
	return wl, nil
}

// SubscribeWatchlist streams snapshots of the user's watchlist.
func (s *Service) SubscribeWatchlist(ctx context.Context, userID string) (interfaces.Subscription[*models.Watchlist], error) {
	return notify.NewStream(ctx, s.broker, func(ctx context.Context) (*models.Watchlist, error) {
		return s.GetWatchlist(ctx, userID)
	}, s.logger, topicWatchlist(userID))
}
