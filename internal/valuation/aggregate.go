package valuation

import (
	"time"

	"github.com/Rhymond/go-money"

	"github.com/tharwatech/mahfaza/internal/models"
)

// Totals are the portfolio-level sums over a set of enriched holdings.
type Totals struct {
	PurchaseValue float64
	CurrentValue  float64
	Change        float64
	ChangePct     float64
}

// SumAssumingSameCurrency reduces enriched holdings into portfolio totals by
// plain addition. Holdings may be denominated in different currencies (SAR,
// QAR, AED, USD) but no conversion is applied; the result is displayed as
// SAR. This is a deliberate compatibility carry-over — swap this function
// for a converting implementation to fix the displayed numbers.
func SumAssumingSameCurrency(holdings []models.EnrichedHolding) Totals {
	var t Totals
	for _, h := range holdings {
		t.PurchaseValue += h.PurchaseValue
		t.CurrentValue += h.CurrentValue
	}
	t.Change = t.CurrentValue - t.PurchaseValue
	t.ChangePct = changePct(t.Change, t.PurchaseValue)
	return t
}

// EnrichPortfolio values every holding against the catalog snapshot and
// aggregates the results. Holdings with unresolvable catalog references are
// excluded from the enriched list and totals, and reported as stale
// references.
func EnrichPortfolio(p *models.Portfolio, holdings []*models.Holding, catalog *models.Catalog, now time.Time) *models.PortfolioValuation {
	v := &models.PortfolioValuation{
		PortfolioID:   p.ID,
		PortfolioName: p.Name,
		Holdings:      []models.EnrichedHolding{},
		ValuedAt:      now,
	}

	for _, h := range holdings {
		eh, sr := ValuePosition(h, catalog)
		if sr != nil {
			v.StaleReferences = append(v.StaleReferences, *sr)
			continue
		}
		v.Holdings = append(v.Holdings, *eh)
	}

	totals := SumAssumingSameCurrency(v.Holdings)
	v.TotalPurchaseValue = totals.PurchaseValue
	v.TotalCurrentValue = totals.CurrentValue
	v.TotalChange = totals.Change
	v.TotalChangePct = totals.ChangePct
	v.DisplayTotal = FormatSAR(totals.CurrentValue)

	return v
}

// FormatSAR renders an amount as a Saudi riyal display string.
func FormatSAR(amount float64) string {
	return money.NewFromFloat(amount, money.SAR).Display()
}
