package strategy

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/tharwatech/mahfaza/internal/common"
	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
	"github.com/tharwatech/mahfaza/internal/services/notify"
)

type memStrategyStore struct {
	mu         sync.Mutex
	strategies []*models.InvestmentStrategy
}

func (m *memStrategyStore) SaveStrategy(ctx context.Context, s *models.InvestmentStrategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.strategies = append(m.strategies, &cp)
	return nil
}

func (m *memStrategyStore) ListStrategies(ctx context.Context, userID string) ([]*models.InvestmentStrategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InvestmentStrategy
	for _, s := range m.strategies {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memStorage struct {
	strategies *memStrategyStore
}

func (m *memStorage) CatalogStore() interfaces.CatalogStore     { return nil }
func (m *memStorage) PortfolioStore() interfaces.PortfolioStore { return nil }
func (m *memStorage) StrategyStore() interfaces.StrategyStore   { return m.strategies }
func (m *memStorage) WatchlistStore() interfaces.WatchlistStore { return nil }
func (m *memStorage) UserStore() interfaces.UserStore           { return nil }
func (m *memStorage) Close() error                              { return nil }

type fakeGemini struct {
	mu       sync.Mutex
	strategy *models.InvestmentStrategy
	analysis string
	err      error

	calls   int
	started chan struct{} // closed when the first GenerateStrategy call begins
	release chan struct{} // blocks the first GenerateStrategy call until closed
}

func (f *fakeGemini) GenerateStrategy(ctx context.Context, profile *models.ClientProfile) (*models.InvestmentStrategy, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first && f.started != nil {
		close(f.started)
	}
	if first && f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.strategy
	return &cp, nil
}

func (f *fakeGemini) AnalyzeStock(ctx context.Context, asset *models.Asset) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.analysis, nil
}

type staticCatalog struct {
	catalog *models.Catalog
}

func (s *staticCatalog) Catalog(ctx context.Context) (*models.Catalog, error) { return s.catalog, nil }
func (s *staticCatalog) Refresh(ctx context.Context) (*models.Catalog, error) { return s.catalog, nil }

func generatedStrategy() *models.InvestmentStrategy {
	return &models.InvestmentStrategy{
		Title:   "خطة استثمارية متوازنة",
		Summary: "توزيع متوازن بين الأسهم والذهب",
		Allocations: []models.CategoryAllocation{
			{Category: models.CategoryStocks, Percentage: 60, Rationale: "نمو طويل الأجل"},
			{Category: models.CategoryGold, Percentage: 40, Rationale: "تحوط ضد التضخم"},
		},
		Recommendations: []models.StockRecommendation{
			{Ticker: "2222", Name: "Saudi Aramco", Justification: "توزيعات مستقرة"},
		},
		RiskAnalysis: "مخاطر متوسطة",
	}
}

func testProfile() *models.ClientProfile {
	return &models.ClientProfile{
		Capital:    500000,
		Currency:   models.CurrencySAR,
		Categories: []models.AssetCategory{models.CategoryStocks, models.CategoryGold},
		RiskLevel:  models.RiskMedium,
		Goals:      "التقاعد المبكر",
	}
}

func newTestService(gemini *fakeGemini) (*Service, *memStrategyStore, *notify.Broker) {
	store := &memStrategyStore{}
	broker := notify.NewBroker()
	assets := []*models.Asset{
		{Ticker: "2222", Name: "Saudi Aramco", NameAr: "أرامكو السعودية", Category: models.CategoryStocks, Currency: models.CurrencySAR, Price: 28.5},
	}
	cat := models.NewCatalog(assets, nil, time.Now())
	svc := NewService(&memStorage{strategies: store}, gemini, &staticCatalog{catalog: cat}, broker, common.NewSilentLogger())
	return svc, store, broker
}

func TestGenerateStrategy(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy()})
	defer broker.Close()

	s, err := svc.GenerateStrategy(context.Background(), "user-1", testProfile())
	if err != nil {
		t.Fatalf("GenerateStrategy: %v", err)
	}
	if s.ID == "" || s.UserID != "user-1" {
		t.Errorf("strategy identity not set: %+v", s)
	}
	if s.Renormalized {
		t.Error("well-formed allocations flagged as renormalized")
	}
}

func TestGenerateStrategyRenormalizes(t *testing.T) {
	bad := generatedStrategy()
	bad.Allocations = []models.CategoryAllocation{
		{Category: models.CategoryStocks, Percentage: 70},
		{Category: models.CategoryGold, Percentage: 50},
	}
	svc, _, broker := newTestService(&fakeGemini{strategy: bad})
	defer broker.Close()

	s, err := svc.GenerateStrategy(context.Background(), "user-1", testProfile())
	if err != nil {
		t.Fatalf("GenerateStrategy: %v", err)
	}
	if !s.Renormalized {
		t.Error("out-of-contract allocations not flagged")
	}
	sum := 0.0
	for _, a := range s.Allocations {
		sum += a.Percentage
	}
	if sum < 99.999 || sum > 100.001 {
		t.Errorf("allocation sum = %v, want 100", sum)
	}
}

func TestGenerateStrategyRejectsBadProfile(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy()})
	defer broker.Close()

	if _, err := svc.GenerateStrategy(context.Background(), "user-1", nil); err == nil {
		t.Error("expected error for nil profile")
	}
	if _, err := svc.GenerateStrategy(context.Background(), "user-1", &models.ClientProfile{Capital: 0}); err == nil {
		t.Error("expected error for non-positive capital")
	}
}

func TestGenerateStrategySupersededByNewerRequest(t *testing.T) {
	gemini := &fakeGemini{
		strategy: generatedStrategy(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	svc, _, broker := newTestService(gemini)
	defer broker.Close()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GenerateStrategy(context.Background(), "user-1", testProfile())
		firstErr <- err
	}()

	// Wait until the first request is inside the generator, then run a
	// second one to completion. It takes over the user's token.
	select {
	case <-gemini.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first generation never started")
	}

	second, err := svc.GenerateStrategy(context.Background(), "user-1", testProfile())
	if err != nil {
		t.Fatalf("second GenerateStrategy: %v", err)
	}
	if second == nil || second.ID == "" {
		t.Fatal("second request did not produce a strategy")
	}

	// Release the first request; its result must be discarded, not applied.
	close(gemini.release)
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first request err = %v, want ErrSuperseded", err)
	}
}

func TestSaveAndListStrategies(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy()})
	defer broker.Close()
	ctx := context.Background()

	s, err := svc.GenerateStrategy(ctx, "user-1", testProfile())
	if err != nil {
		t.Fatalf("GenerateStrategy: %v", err)
	}
	if err := svc.SaveStrategy(ctx, "user-1", s); err != nil {
		t.Fatalf("SaveStrategy: %v", err)
	}

	list, err := svc.ListStrategies(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListStrategies: %v", err)
	}
	if len(list) != 1 || list[0].ID != s.ID {
		t.Errorf("unexpected strategy list: %+v", list)
	}

	other, err := svc.ListStrategies(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListStrategies: %v", err)
	}
	if len(other) != 0 {
		t.Error("strategies leaked across users")
	}
}

func TestSubscribeStrategiesStreamsSaves(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy()})
	defer broker.Close()
	ctx := context.Background()

	sub, err := svc.SubscribeStrategies(ctx, "user-1")
	if err != nil {
		t.Fatalf("SubscribeStrategies: %v", err)
	}
	defer sub.Close()

	select {
	case initial := <-sub.Updates():
		if len(initial) != 0 {
			t.Errorf("initial snapshot has %d strategies, want 0", len(initial))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	s, err := svc.GenerateStrategy(ctx, "user-1", testProfile())
	if err != nil {
		t.Fatalf("GenerateStrategy: %v", err)
	}
	if err := svc.SaveStrategy(ctx, "user-1", s); err != nil {
		t.Fatalf("SaveStrategy: %v", err)
	}

	select {
	case snapshot := <-sub.Updates():
		if len(snapshot) != 1 {
			t.Errorf("snapshot has %d strategies, want 1", len(snapshot))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after save")
	}
}

func TestAnalyzeStock(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy(), analysis: "تحليل السهم"})
	defer broker.Close()

	a, err := svc.AnalyzeStock(context.Background(), "2222")
	if err != nil {
		t.Fatalf("AnalyzeStock: %v", err)
	}
	if a.Ticker != "2222" || a.Analysis != "تحليل السهم" {
		t.Errorf("unexpected analysis: %+v", a)
	}
}

func TestAnalyzeStockUnknownTicker(t *testing.T) {
	svc, _, broker := newTestService(&fakeGemini{strategy: generatedStrategy()})
	defer broker.Close()

	if _, err := svc.AnalyzeStock(context.Background(), "9999"); err != interfaces.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
