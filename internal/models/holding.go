package models

import (
	"fmt"
	"time"
)

// Holding is a single position inside a portfolio. The Category tag
// determines which identifying fields are populated; the constructors and
// Validate enforce that exactly the category's fields are set, so there is
// no optional-field ambiguity downstream.
//
// Holdings are immutable once created: the only mutation is delete/recreate.
type Holding struct {
	ID          string        `json:"id"`
	PortfolioID string        `json:"portfolio_id"`
	Category    AssetCategory `json:"category"`

	// Stocks and SavingsCertificates
	Ticker   string  `json:"ticker,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`

	// RealEstate
	CityKey string  `json:"city_key,omitempty"`
	AreaSqM float64 `json:"area_sqm,omitempty"`

	// PurchasePrice is the total amount paid for the position, not a unit price.
	PurchasePrice float64 `json:"purchase_price"`

	CreatedAt time.Time `json:"created_at"`
}

// NewStockHolding creates a stocks holding.
func NewStockHolding(ticker string, quantity, purchasePrice float64) *Holding {
	return &Holding{
		Category:      CategoryStocks,
		Ticker:        NormalizeTicker(ticker),
		Quantity:      quantity,
		PurchasePrice: purchasePrice,
	}
}

// NewRealEstateHolding creates a real estate holding.
func NewRealEstateHolding(cityKey string, areaSqM, purchasePrice float64) *Holding {
	return &Holding{
		Category:      CategoryRealEstate,
		CityKey:       NormalizeCityKey(cityKey),
		AreaSqM:       areaSqM,
		PurchasePrice: purchasePrice,
	}
}

// NewGoldHolding creates a gold holding. Gold positions are identified by
// purchase price alone; pricing resolves against the catalog gold entry.
func NewGoldHolding(purchasePrice float64) *Holding {
	return &Holding{
		Category:      CategoryGold,
		PurchasePrice: purchasePrice,
	}
}

// NewCertificateHolding creates a savings certificate holding referencing a
// fixed-yield catalog asset.
func NewCertificateHolding(ticker string, purchasePrice float64) *Holding {
	return &Holding{
		Category:      CategorySavingsCertificates,
		Ticker:        NormalizeTicker(ticker),
		PurchasePrice: purchasePrice,
	}
}

// Validate checks the category invariant: exactly the fields relevant to the
// holding's category are populated, and numeric fields are positive.
func (h *Holding) Validate() error {
	if h.PurchasePrice <= 0 {
		return fmt.Errorf("purchase price must be positive")
	}

	switch h.Category {
	case CategoryStocks:
		if h.Ticker == "" {
			return fmt.Errorf("stocks holding requires a ticker")
		}
		if h.Quantity <= 0 {
			return fmt.Errorf("stocks holding requires a positive quantity")
		}
		if h.CityKey != "" || h.AreaSqM != 0 {
			return fmt.Errorf("stocks holding must not carry real estate fields")
		}
	case CategoryRealEstate:
		if h.CityKey == "" {
			return fmt.Errorf("real estate holding requires a city")
		}
		if h.AreaSqM <= 0 {
			return fmt.Errorf("real estate holding requires a positive area")
		}
		if h.Ticker != "" || h.Quantity != 0 {
			return fmt.Errorf("real estate holding must not carry stock fields")
		}
	case CategoryGold:
		if h.Ticker != "" || h.Quantity != 0 || h.CityKey != "" || h.AreaSqM != 0 {
			return fmt.Errorf("gold holding carries only a purchase price")
		}
	case CategorySavingsCertificates:
		if h.Ticker == "" {
			return fmt.Errorf("savings certificate holding requires a ticker")
		}
		if h.Quantity != 0 || h.CityKey != "" || h.AreaSqM != 0 {
			return fmt.Errorf("savings certificate holding carries only ticker and purchase price")
		}
	default:
		return fmt.Errorf("unsupported holding category %q", h.Category)
	}

	return nil
}
