// Package marketdata provides a client for the upstream market-data catalog API
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.SetTimeout(timeout)
	}
}

// NewClient creates a new market-data client
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}

	c := &Client{
		client:  rc,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// assetEntry mirrors the upstream asset payload.
type assetEntry struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	NameAr      string  `json:"name_ar"`
	Category    string  `json:"category"`
	Country     string  `json:"country"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
	Change      float64 `json:"change"`
	ChangePct   float64 `json:"change_percent"`
	AnnualYield float64 `json:"annual_yield"`
}

// cityEntry mirrors the upstream real-estate payload.
type cityEntry struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	NameAr      string  `json:"name_ar"`
	PricePerSqM float64 `json:"price_per_sqm"`
	Currency    string  `json:"currency"`
}

// FetchAssets retrieves the full asset catalog from the upstream source.
func (c *Client) FetchAssets(ctx context.Context) ([]*models.Asset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.R().SetContext(ctx).Get("/assets")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("assets request failed with status %d", resp.StatusCode())
	}

	var entries []assetEntry
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse assets response: %w", err)
	}

	now := time.Now()
	assets := make([]*models.Asset, 0, len(entries))
	for _, e := range entries {
		if e.Ticker == "" || !models.ValidCurrency(e.Currency) {
			c.logger.Warn().Str("ticker", e.Ticker).Str("currency", e.Currency).Msg("Skipping malformed asset entry")
			continue
		}
		assets = append(assets, &models.Asset{
			Ticker:      models.NormalizeTicker(e.Ticker),
			Name:        e.Name,
			NameAr:      e.NameAr,
			Category:    models.AssetCategory(e.Category),
			Country:     e.Country,
			Currency:    e.Currency,
			Price:       e.Price,
			Change:      e.Change,
			ChangePct:   e.ChangePct,
			AnnualYield: e.AnnualYield,
			LastUpdated: now,
		})
	}

	c.logger.Info().Int("assets", len(assets)).Msg("Fetched asset catalog")
	return assets, nil
}

// FetchCities retrieves average city prices from the upstream source.
func (c *Client) FetchCities(ctx context.Context) ([]*models.RealEstateCity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.R().SetContext(ctx).Get("/realestate/cities")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("cities request failed with status %d", resp.StatusCode())
	}

	var entries []cityEntry
	if err := json.Unmarshal(resp.Body(), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cities response: %w", err)
	}

	now := time.Now()
	cities := make([]*models.RealEstateCity, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" || e.PricePerSqM <= 0 {
			c.logger.Warn().Str("city", e.Key).Msg("Skipping malformed city entry")
			continue
		}
		cities = append(cities, &models.RealEstateCity{
			Key:         models.NormalizeCityKey(e.Key),
			Name:        e.Name,
			NameAr:      e.NameAr,
			PricePerSqM: e.PricePerSqM,
			Currency:    e.Currency,
			LastUpdated: now,
		})
	}

	c.logger.Info().Int("cities", len(cities)).Msg("Fetched city catalog")
	return cities, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
