// Package valuation computes current values, unrealized P&L, and portfolio
// aggregates for multi-asset holdings against a catalog snapshot. All
// functions are pure: each snapshot delivered by storage is revalued in full.
package valuation

import (
	"fmt"

	"github.com/tharwatech/mahfaza/internal/models"
)

// ValuePosition converts one holding plus the catalog snapshot into an
// enriched position. A holding whose catalog reference cannot be resolved
// (or whose category fields are unusable) yields a StaleReference instead of
// an enriched value; it must contribute nothing to totals.
func ValuePosition(h *models.Holding, catalog *models.Catalog) (*models.EnrichedHolding, *models.StaleReference) {
	switch h.Category {
	case models.CategoryStocks:
		return valueStock(h, catalog)
	case models.CategoryRealEstate:
		return valueRealEstate(h, catalog)
	case models.CategoryGold:
		return valueGold(h, catalog)
	case models.CategorySavingsCertificates:
		return valueCertificate(h, catalog)
	default:
		return nil, stale(h, string(h.Category), fmt.Sprintf("unsupported category %q", h.Category))
	}
}

func valueStock(h *models.Holding, catalog *models.Catalog) (*models.EnrichedHolding, *models.StaleReference) {
	asset := catalog.LookupAsset(h.Ticker)
	if asset == nil {
		return nil, stale(h, h.Ticker, "ticker not in catalog")
	}
	if h.Quantity <= 0 {
		return nil, stale(h, h.Ticker, "missing or non-positive quantity")
	}

	current := h.Quantity * asset.Price
	return enriched(h, asset.Name, asset.NameAr, asset.Currency, current), nil
}

func valueRealEstate(h *models.Holding, catalog *models.Catalog) (*models.EnrichedHolding, *models.StaleReference) {
	city := catalog.LookupCity(h.CityKey)
	if city == nil {
		return nil, stale(h, h.CityKey, "city not in catalog")
	}
	if h.AreaSqM <= 0 {
		return nil, stale(h, h.CityKey, "missing or non-positive area")
	}

	current := h.AreaSqM * city.PricePerSqM
	return enriched(h, city.Name, city.NameAr, city.Currency, current), nil
}

// valueGold reconstructs an implied purchase-time price from the current
// price and the latest tick's absolute change, then scales the purchase
// amount by the current-to-purchase price ratio:
//
//	current = purchase × price / (price − change)
//
// This is a known approximation: it treats the latest tick's change as
// representative of the whole holding period, which only holds exactly for
// positions bought one tick ago. Kept for compatibility with existing
// displayed values; a correct fix is to store the purchase-time gold price
// on the holding.
func valueGold(h *models.Holding, catalog *models.Catalog) (*models.EnrichedHolding, *models.StaleReference) {
	gold := catalog.Gold()
	if gold == nil {
		return nil, stale(h, models.GoldTicker, "gold entry not in catalog")
	}

	base := gold.Price - gold.Change
	if base <= 0 {
		return nil, stale(h, models.GoldTicker, "gold price history unusable")
	}

	current := h.PurchasePrice * (gold.Price / base)
	return enriched(h, gold.Name, gold.NameAr, gold.Currency, current), nil
}

// valueCertificate applies a flat one-year simple-interest accrual
// regardless of actual holding duration: current = purchase × (1 + yield).
func valueCertificate(h *models.Holding, catalog *models.Catalog) (*models.EnrichedHolding, *models.StaleReference) {
	asset := catalog.LookupAsset(h.Ticker)
	if asset == nil {
		return nil, stale(h, h.Ticker, "certificate not in catalog")
	}

	current := h.PurchasePrice * (1 + asset.AnnualYield)
	return enriched(h, asset.Name, asset.NameAr, asset.Currency, current), nil
}

func enriched(h *models.Holding, name, nameAr, currency string, current float64) *models.EnrichedHolding {
	change := current - h.PurchasePrice
	return &models.EnrichedHolding{
		HoldingID:     h.ID,
		Category:      h.Category,
		Ticker:        h.Ticker,
		Name:          name,
		NameAr:        nameAr,
		Currency:      currency,
		PurchaseValue: h.PurchasePrice,
		CurrentValue:  current,
		Change:        change,
		ChangePct:     changePct(change, h.PurchasePrice),
	}
}

func stale(h *models.Holding, ref, reason string) *models.StaleReference {
	return &models.StaleReference{
		HoldingID: h.ID,
		Category:  h.Category,
		Reference: ref,
		Reason:    reason,
	}
}

// changePct guards against division by zero: a zero purchase value yields 0,
// never NaN or Inf.
func changePct(change, purchase float64) float64 {
	if purchase <= 0 {
		return 0
	}
	return change / purchase * 100
}
