// Package strategy generates, stores, and streams AI investment strategies.
package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/notify"
	"github.com/tharwatech/mahfaza/internal/valuation"
)

// Compile-time interface check
var _ interfaces.StrategyService = (*Service)(nil)

// ErrSuperseded is returned when a newer generation request for the same user
// started while this one was in flight. The superseded result is discarded.
var ErrSuperseded = fmt.Errorf("strategy generation superseded by a newer request")

// ErrGeneratorUnavailable is returned when no AI client is configured.
var ErrGeneratorUnavailable = fmt.Errorf("AI generation is not configured")

// Service implements StrategyService.
type Service struct {
	storage interfaces.StorageManager
	gemini  interfaces.GeminiClient
	catalog interfaces.CatalogService
	broker  *notify.Broker
	logger  *common.Logger

	// genMu guards generation tokens; each user's latest request holds the
	// current token and stale results are dropped on return.
	genMu     sync.Mutex
	genTokens map[string]uint64
}

// NewService creates a new strategy service.
func NewService(storage interfaces.StorageManager, gemini interfaces.GeminiClient, catalogSvc interfaces.CatalogService, broker *notify.Broker, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		gemini:    gemini,
		catalog:   catalogSvc,
		broker:    broker,
		logger:    logger,
		genTokens: make(map[string]uint64),
	}
}

func topicStrategies(userID string) string { return "strategies:" + userID }

// GenerateStrategy produces a strategy for the profile. A newer request for
// the same user supersedes any in-flight one; the older request returns
// ErrSuperseded and its result is never applied.
func (s *Service) GenerateStrategy(ctx context.Context, userID string, profile *models.ClientProfile) (*models.InvestmentStrategy, error) {
	if s.gemini == nil {
		return nil, ErrGeneratorUnavailable
	}
	if profile == nil {
		return nil, fmt.Errorf("client profile is required")
	}
	if profile.Capital <= 0 {
		return nil, fmt.Errorf("capital must be positive")
	}

	token := s.nextToken(userID)

	generated, err := s.gemini.GenerateStrategy(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to generate strategy: %w", err)
	}

	if !s.tokenCurrent(userID, token) {
		s.logger.Info().Str("user", userID).Msg("Discarding superseded strategy result")
		return nil, ErrSuperseded
	}

	normalized, adjusted := valuation.NormalizeAllocations(generated.Allocations)
	generated.Allocations = normalized
	generated.Renormalized = adjusted
	if adjusted {
		s.logger.Warn().Str("user", userID).Msg("Generated allocations did not sum to 100, renormalized")
	}

	generated.ID = uuid.NewString()
	generated.UserID = userID
	generated.CreatedAt = time.Now()

	s.logger.Info().
		Str("user", userID).
		Str("strategy", generated.ID).
		Int("allocations", len(generated.Allocations)).
		Msg("Strategy generated")
	return generated, nil
}

// SaveStrategy persists a generated strategy under the user.
func (s *Service) SaveStrategy(ctx context.Context, userID string, strategy *models.InvestmentStrategy) error {
	if strategy == nil {
		return fmt.Errorf("strategy is required")
	}
	if strategy.ID == "" {
		strategy.ID = uuid.NewString()
	}
	strategy.UserID = userID
	if strategy.CreatedAt.IsZero() {
		strategy.CreatedAt = time.Now()
	}

	if err := s.storage.StrategyStore().SaveStrategy(ctx, strategy); err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}

	s.broker.Publish(topicStrategies(userID))
	s.logger.Info().Str("user", userID).Str("strategy", strategy.ID).Msg("Strategy saved")
	return nil
}

// ListStrategies returns the user's saved strategies, newest first.
func (s *Service) ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error) {
	strategies, err := s.storage.StrategyStore().ListStrategies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	return strategies, nil
}

// SubscribeStrategies streams snapshots of the user's saved strategies.
func (s *Service) SubscribeStrategies(ctx context.Context, userID string) (interfaces.Subscription[[]*models.InvestmentStrategy], error) {
	return notify.NewStream(ctx, s.broker, func(ctx context.Context) ([]*models.InvestmentStrategy, error) {
		return s.ListStrategies(ctx, userID)
	}, s.logger, topicStrategies(userID))
}

// AnalyzeStock resolves the ticker against the catalog and requests an
// AI analysis of the asset.
func (s *Service) AnalyzeStock(ctx context.Context, ticker string) (*models.StockAnalysis, error) {
	if s.gemini == nil {
		return nil, ErrGeneratorUnavailable
	}

	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	asset := cat.LookupAsset(ticker)
	if asset == nil {
		return nil, interfaces.ErrNotFound
	}

	text, err := s.gemini.AnalyzeStock(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze stock: %w", err)
	}

	return &models.StockAnalysis{
		Ticker:      asset.Ticker,
		Analysis:    text,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *Service) nextToken(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.genTokens[userID]++
	return s.genTokens[userID]
}

func (s *Service) tokenCurrent(userID string, token uint64) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.genTokens[userID] == token
}
