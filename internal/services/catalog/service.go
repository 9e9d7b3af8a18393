// Package catalog owns the market-data catalog lifecycle: serving the latest
// snapshot and refreshing it from the market-data source.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

// Compile-time interface check
var _ interfaces.CatalogService = (*Service)(nil)

// Service implements CatalogService. The in-memory snapshot is replaced
// wholesale on refresh; readers never see a half-updated catalog.
type Service struct {
	storage    interfaces.StorageManager
	marketData interfaces.MarketDataClient
	broker     Publisher
	logger     *common.Logger

	mu       sync.RWMutex
	snapshot *models.Catalog

	cron *cron.Cron
}

// Publisher is the change-signal sink the service notifies after a refresh.
type Publisher interface {
	Publish(topic string)
}

// TopicCatalog is published after every successful catalog refresh.
const TopicCatalog = "catalog"

// NewService creates a catalog service. The stored catalog is loaded lazily
// on first read if no refresh has run yet.
func NewService(storage interfaces.StorageManager, marketData interfaces.MarketDataClient, broker Publisher, logger *common.Logger) *Service {
	return &Service{
		storage:    storage,
		marketData: marketData,
		broker:     broker,
		logger:     logger,
	}
}

// Catalog returns the latest catalog snapshot, loading it from storage on
// first use.
func (s *Service) Catalog(ctx context.Context) (*models.Catalog, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	loaded, err := s.storage.CatalogStore().GetCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.snapshot = loaded
	}
	snapshot = s.snapshot
	s.mu.Unlock()
	return snapshot, nil
}

// Refresh collects fresh assets and city prices from the market-data source,
// persists them, and swaps in the new snapshot.
func (s *Service) Refresh(ctx context.Context) (*models.Catalog, error) {
	start := time.Now()

	assets, err := s.marketData.FetchAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}
	cities, err := s.marketData.FetchCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}

	if err := s.storage.CatalogStore().SaveAssets(ctx, assets); err != nil {
		return nil, fmt.Errorf("failed to save assets: %w", err)
	}
	if err := s.storage.CatalogStore().SaveCities(ctx, cities); err != nil {
		return nil, fmt.Errorf("failed to save cities: %w", err)
	}

	catalog := models.NewCatalog(assets, cities, time.Now())

	s.mu.Lock()
	s.snapshot = catalog
	s.mu.Unlock()

	if s.broker != nil {
		s.broker.Publish(TopicCatalog)
	}

	s.logger.Info().
		Int("assets", len(assets)).
		Int("cities", len(cities)).
		Dur("duration", time.Since(start)).
		Msg("Catalog refreshed")
	return catalog, nil
}

// StartScheduler begins periodic refreshes on the given cron schedule.
// Returns an error for an unparseable schedule; a failing refresh run is
// logged and retried at the next tick.
func (s *Service) StartScheduler(schedule string) error {
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled catalog refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Catalog refresh scheduler started")
	return nil
}

// StopScheduler halts periodic refreshes and waits for a running job.
func (s *Service) StopScheduler() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron = nil
}
