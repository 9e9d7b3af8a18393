// Package portfolio manages portfolios, their holdings, and live valuation.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/catalog"
	"github.com/tharwatech/mahfaza/internal/services/notify"
	"github.com/tharwatech/mahfaza/internal/valuation"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService.
type Service struct {
	storage interfaces.StorageManager
	catalog interfaces.CatalogService
	broker  *notify.Broker
	logger  *common.Logger
}

// NewService creates a new portfolio service.
func NewService(storage interfaces.StorageManager, catalogSvc interfaces.CatalogService, broker *notify.Broker, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		catalog: catalogSvc,
		broker:  broker,
		logger:  logger,
	}
}

func topicPortfolios(userID string) string { return "portfolios:" + userID }

func topicHoldings(portfolioID string) string { return "holdings:" + portfolioID }

// CreatePortfolio creates an empty portfolio for the user.
func (s *Service) CreatePortfolio(ctx context.Context, userID, name string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("portfolio name is required")
	}

	p := &models.Portfolio{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.storage.PortfolioStore().CreatePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	s.broker.Publish(topicPortfolios(userID))
	s.logger.Info().Str("user", userID).Str("portfolio", p.ID).Str("name", name).Msg("Portfolio created")
	return p, nil
}

// ListPortfolios returns the user's portfolios in creation order.
func (s *Service) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	portfolios, err := s.storage.PortfolioStore().ListPortfolios(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

// DeletePortfolio removes the portfolio and all of its holdings.
func (s *Service) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, userID, portfolioID); err != nil {
		if err == interfaces.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	s.broker.Publish(topicPortfolios(userID))
	s.broker.Publish(topicHoldings(portfolioID))
	s.logger.Info().Str("user", userID).Str("portfolio", portfolioID).Msg("Portfolio deleted")
	return nil
}

// AddHolding validates the holding and persists it under the portfolio.
// Returns the generated holding ID.
func (s *Service) AddHolding(ctx context.Context, userID, portfolioID string, h *models.Holding) (string, error) {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID); err != nil {
		if err == interfaces.ErrNotFound {
			return "", err
		}
		return "", fmt.Errorf("failed to load portfolio: %w", err)
	}

	if err := h.Validate(); err != nil {
		return "", fmt.Errorf("invalid holding: %w", err)
	}

	h.ID = uuid.NewString()
	h.PortfolioID = portfolioID
	h.CreatedAt = time.Now()

	if err := s.storage.PortfolioStore().AddHolding(ctx, h); err != nil {
		return "", fmt.Errorf("failed to add holding: %w", err)
	}

	s.broker.Publish(topicHoldings(portfolioID))
	s.logger.Info().
		Str("user", userID).
		Str("portfolio", portfolioID).
		Str("holding", h.ID).
		Str("category", string(h.Category)).
		Msg("Holding added")
	return h.ID, nil
}

// RemoveHolding deletes the holding from the portfolio.
func (s *Service) RemoveHolding(ctx context.Context, userID, portfolioID, holdingID string) error {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID); err != nil {
		if err == interfaces.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	if err := s.storage.PortfolioStore().RemoveHolding(ctx, portfolioID, holdingID); err != nil {
		if err == interfaces.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to remove holding: %w", err)
	}

	s.broker.Publish(topicHoldings(portfolioID))
	s.logger.Info().Str("user", userID).Str("portfolio", portfolioID).Str("holding", holdingID).Msg("Holding removed")
	return nil
}

// ValuePortfolio joins the portfolio's holdings with the latest catalog
// snapshot and aggregates totals. Recomputed in full on every call.
func (s *Service) ValuePortfolio(ctx context.Context, userID, portfolioID string) (*models.PortfolioValuation, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID)
	if err != nil {
		if err == interfaces.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	holdings, err := s.storage.PortfolioStore().ListHoldings(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	cat, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	v := valuation.EnrichPortfolio(p, holdings, cat, time.Now())
	for _, sr := range v.StaleReferences {
		s.logger.Warn().
			Str("portfolio", portfolioID).
			Str("holding", sr.HoldingID).
			Str("reference", sr.Reference).
			Msg("Holding excluded from valuation")
	}
	return v, nil
}

// SubscribePortfolios streams snapshots of the user's portfolio list.
func (s *Service) SubscribePortfolios(ctx context.Context, userID string) (interfaces.Subscription[[]*models.Portfolio], error) {
	return notify.NewStream(ctx, s.broker, func(ctx context.Context) ([]*models.Portfolio, error) {
		return s.ListPortfolios(ctx, userID)
	}, s.logger, topicPortfolios(userID))
}

// SubscribeHoldings streams snapshots of the portfolio's holdings.
func (s *Service) SubscribeHoldings(ctx context.Context, userID, portfolioID string) (interfaces.Subscription[[]*models.Holding], error) {
	if _, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID); err != nil {
		return nil, err
	}
	return notify.NewStream(ctx, s.broker, func(ctx context.Context) ([]*models.Holding, error) {
		return s.storage.PortfolioStore().ListHoldings(ctx, portfolioID)
	}, s.logger, topicHoldings(portfolioID))
}

// SubscribeValuation streams full valuations of the portfolio, refreshed when
// its holdings change and when the catalog refreshes.
func (s *Service) SubscribeValuation(ctx context.Context, userID, portfolioID string) (interfaces.Subscription[*models.PortfolioValuation], error) {
	return notify.NewStream(ctx, s.broker, func(ctx context.Context) (*models.PortfolioValuation, error) {
		return s.ValuePortfolio(ctx, userID, portfolioID)
	}, s.logger, topicHoldings(portfolioID), catalog.TopicCatalog)
}
