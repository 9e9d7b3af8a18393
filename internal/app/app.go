// Package app wires configuration, storage, clients, and services into a
// running application core shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tharwatech/mahfaza/internal/clients/gemini"
	"github.com/tharwatech/mahfaza/internal/clients/marketdata"
	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/services/catalog"
	"github.com/tharwatech/mahfaza/internal/services/notify"
	"github.com/tharwatech/mahfaza/internal/services/portfolio"
	"github.com/tharwatech/mahfaza/internal/services/strategy"
	"github.com/tharwatech/mahfaza/internal/services/watchlist"
	"github.com/tharwatech/mahfaza/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	Broker           *notify.Broker
	GeminiClient     interfaces.GeminiClient
	MarketDataClient interfaces.MarketDataClient
	CatalogService   *catalog.Service
	PortfolioService interfaces.PortfolioService
	StrategyService  interfaces.StrategyService
	WatchlistService interfaces.WatchlistService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, MAHFAZA_CONFIG, binary dir, dev fallback.
	if configPath == "" {
		configPath = os.Getenv("MAHFAZA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "mahfaza.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/mahfaza.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	marketDataClient := marketdata.NewClient(
		config.Clients.MarketData.BaseURL,
		config.Clients.MarketData.APIKey,
		marketdata.WithLogger(logger),
		marketdata.WithRateLimit(config.Clients.MarketData.RateLimit),
		marketdata.WithTimeout(config.Clients.MarketData.GetTimeout()),
	)

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - AI features unavailable")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - AI features unavailable")
	}

	broker := notify.NewBroker()

	catalogService := catalog.NewService(storageManager, marketDataClient, broker, logger)
	portfolioService := portfolio.NewService(storageManager, catalogService, broker, logger)
	strategyService := strategy.NewService(storageManager, geminiClient, catalogService, broker, logger)
	watchlistService := watchlist.NewService(storageManager, broker, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		Broker:           broker,
		GeminiClient:     geminiClient,
		MarketDataClient: marketDataClient,
		CatalogService:   catalogService,
		PortfolioService: portfolioService,
		StrategyService:  strategyService,
		WatchlistService: watchlistService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartCatalogScheduler begins the periodic catalog refresh job.
func (a *App) StartCatalogScheduler() error {
	return a.CatalogService.StartScheduler(a.Config.Catalog.RefreshSchedule)
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close broker, close storage.
func (a *App) Close() {
	if a.CatalogService != nil {
		a.CatalogService.StopScheduler()
	}
	if a.Broker != nil {
		a.Broker.Close()
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
