package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tharwatech/mahfaza/internal/app"
	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/catalog"
	"github.com/tharwatech/mahfaza/internal/services/notify"
	"github.com/tharwatech/mahfaza/internal/services/portfolio"
	"github.com/tharwatech/mahfaza/internal/services/strategy"
	"github.com/tharwatech/mahfaza/internal/services/watchlist"
)

// memStorage is an in-memory StorageManager for handler tests.
type memStorage struct {
	mu         sync.Mutex
	assets     map[string]*models.Asset
	cities     map[string]*models.RealEstateCity
	portfolios map[string]*models.Portfolio
	holdings   map[string]*models.Holding
	strategies []*models.InvestmentStrategy
	watchlists map[string]*models.Watchlist
	users      map[string]*models.User
}

func newMemStorage() *memStorage {
	return &memStorage{
		assets:     make(map[string]*models.Asset),
		cities:     make(map[string]*models.RealEstateCity),
		portfolios: make(map[string]*models.Portfolio),
		holdings:   make(map[string]*models.Holding),
		watchlists: make(map[string]*models.Watchlist),
		users:      make(map[string]*models.User),
	}
}

func (m *memStorage) CatalogStore() interfaces.CatalogStore     { return (*memCatalogStore)(m) }
func (m *memStorage) PortfolioStore() interfaces.PortfolioStore { return (*memPortfolioStore)(m) }
func (m *memStorage) StrategyStore() interfaces.StrategyStore   { return (*memStrategyStore)(m) }
func (m *memStorage) WatchlistStore() interfaces.WatchlistStore { return (*memWatchlistStore)(m) }
func (m *memStorage) UserStore() interfaces.UserStore           { return (*memUserStore)(m) }
func (m *memStorage) Close() error                              { return nil }

type memCatalogStore memStorage

func (s *memCatalogStore) SaveAssets(ctx context.Context, assets []*models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assets {
		s.assets[models.NormalizeTicker(a.Ticker)] = a
	}
	return nil
}

func (s *memCatalogStore) SaveCities(ctx context.Context, cities []*models.RealEstateCity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cities {
		s.cities[models.NormalizeCityKey(c.Key)] = c
	}
	return nil
}

func (s *memCatalogStore) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assets := make([]*models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		assets = append(assets, a)
	}
	cities := make([]*models.RealEstateCity, 0, len(s.cities))
	for _, c := range s.cities {
		cities = append(cities, c)
	}
	return models.NewCatalog(assets, cities, time.Now()), nil
}

type memPortfolioStore memStorage

func (s *memPortfolioStore) CreatePortfolio(ctx context.Context, p *models.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.portfolios[p.ID] = &cp
	return nil
}

func (s *memPortfolioStore) GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[portfolioID]
	if !ok || p.UserID != userID {
		return nil, interfaces.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memPortfolioStore) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Portfolio
	for _, p := range s.portfolios {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memPortfolioStore) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[portfolioID]
	if !ok || p.UserID != userID {
		return interfaces.ErrNotFound
	}
	delete(s.portfolios, portfolioID)
	for id, h := range s.holdings {
		if h.PortfolioID == portfolioID {
			delete(s.holdings, id)
		}
	}
	return nil
}

func (s *memPortfolioStore) AddHolding(ctx context.Context, h *models.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *h
	s.holdings[h.ID] = &cp
	return nil
}

func (s *memPortfolioStore) ListHoldings(ctx context.Context, portfolioID string) ([]*models.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Holding
	for _, h := range s.holdings {
		if h.PortfolioID == portfolioID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memPortfolioStore) RemoveHolding(ctx context.Context, portfolioID, holdingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holdings[holdingID]
	if !ok || h.PortfolioID != portfolioID {
		return interfaces.ErrNotFound
	}
	delete(s.holdings, holdingID)
	return nil
}

type memStrategyStore memStorage

func (s *memStrategyStore) SaveStrategy(ctx context.Context, strat *models.InvestmentStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *strat
	s.strategies = append(s.strategies, &cp)
	return nil
}

func (s *memStrategyStore) ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.InvestmentStrategy
	for _, strat := range s.strategies {
		if strat.UserID == userID {
			cp := *strat
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memWatchlistStore memStorage

func (s *memWatchlistStore) GetWatchlist(ctx context.Context, userID string) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.watchlists[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *wl
	cp.Tickers = append([]string(nil), wl.Tickers...)
	return &cp, nil
}

func (s *memWatchlistStore) SaveWatchlist(ctx context.Context, w *models.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *w
	cp.Tickers = append([]string(nil), w.Tickers...)
	s.watchlists[w.UserID] = &cp
	return nil
}

type memUserStore memStorage

func (s *memUserStore) SaveUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.UserID] = &cp
	return nil
}

func (s *memUserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

// fakeMarketData serves a fixed catalog for refresh tests.
type fakeMarketData struct {
	assets []*models.Asset
	cities []*models.RealEstateCity
}

func (f *fakeMarketData) FetchAssets(ctx context.Context) ([]*models.Asset, error) {
	return f.assets, nil
}

func (f *fakeMarketData) FetchCities(ctx context.Context) ([]*models.RealEstateCity, error) {
	return f.cities, nil
}

// fakeGemini returns canned AI output.
type fakeGemini struct {
	strategy *models.InvestmentStrategy
	analysis string
}

func (f *fakeGemini) GenerateStrategy(ctx context.Context, profile *models.ClientProfile) (*models.InvestmentStrategy, error) {
	cp := *f.strategy
	return &cp, nil
}

func (f *fakeGemini) AnalyzeStock(ctx context.Context, asset *models.Asset) (string, error) {
	return f.analysis, nil
}

// newTestServer wires an in-memory application with a seeded catalog.
func newTestServer() (*Server, *memStorage) {
	storage := newMemStorage()
	storage.assets["2222"] = &models.Asset{
		Ticker: "2222", Name: "Saudi Aramco", NameAr: "أرامكو السعودية",
		Category: models.CategoryStocks, Currency: models.CurrencySAR, Price: 28.5,
		LastUpdated: time.Now(),
	}
	storage.assets[models.GoldTicker] = &models.Asset{
		Ticker: models.GoldTicker, Name: "Gold", Category: models.CategoryGold,
		Currency: models.CurrencyUSD, Price: 2400, Change: 48, LastUpdated: time.Now(),
	}
	storage.cities["riyadh"] = &models.RealEstateCity{
		Key: "riyadh", Name: "Riyadh", PricePerSqM: 8000,
		Currency: models.CurrencySAR, LastUpdated: time.Now(),
	}

	config := common.NewDefaultConfig()
	logger := common.NewSilentLogger()
	broker := notify.NewBroker()

	marketData := &fakeMarketData{
		assets: []*models.Asset{{
			Ticker: "1120", Name: "Al Rajhi Bank", Category: models.CategoryStocks,
			Currency: models.CurrencySAR, Price: 82.4, LastUpdated: time.Now(),
		}},
		cities: []*models.RealEstateCity{{
			Key: "jeddah", Name: "Jeddah", PricePerSqM: 6500,
			Currency: models.CurrencySAR, LastUpdated: time.Now(),
		}},
	}
	gemini := &fakeGemini{
		strategy: &models.InvestmentStrategy{
			Title: "خطة متوازنة",
			Allocations: []models.CategoryAllocation{
				{Category: models.CategoryStocks, Percentage: 60},
				{Category: models.CategoryGold, Percentage: 40},
			},
		},
		analysis: "تحليل تفصيلي للسهم",
	}

	catalogService := catalog.NewService(storage, marketData, broker, logger)
	portfolioService := portfolio.NewService(storage, catalogService, broker, logger)
	strategyService := strategy.NewService(storage, gemini, catalogService, broker, logger)
	watchlistService := watchlist.NewService(storage, broker, logger)

	a := &app.App{
		Config:           config,
		Logger:           logger,
		Storage:          storage,
		Broker:           broker,
		GeminiClient:     gemini,
		MarketDataClient: marketData,
		CatalogService:   catalogService,
		PortfolioService: portfolioService,
		StrategyService:  strategyService,
		WatchlistService: watchlistService,
		StartupTime:      time.Now(),
	}
	return NewServer(a), storage
}
