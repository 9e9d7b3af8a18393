// Package models defines data structures for Mahfaza
package models

import (
	"strings"
	"time"
)

// Currency codes supported by the catalog.
const (
	CurrencySAR = "SAR"
	CurrencyQAR = "QAR"
	CurrencyAED = "AED"
	CurrencyUSD = "USD"
)

// ValidCurrency reports whether code is one of the supported currency codes.
func ValidCurrency(code string) bool {
	switch strings.ToUpper(code) {
	case CurrencySAR, CurrencyQAR, CurrencyAED, CurrencyUSD:
		return true
	}
	return false
}

// AssetCategory categorizes catalog assets and portfolio holdings
type AssetCategory string

const (
	CategoryStocks              AssetCategory = "stocks"
	CategoryRealEstate          AssetCategory = "real_estate"
	CategoryGold                AssetCategory = "gold"
	CategoryBonds               AssetCategory = "bonds"
	CategorySavingsCertificates AssetCategory = "savings_certificates"
	CategoryOther               AssetCategory = "other"
)

// GoldTicker is the catalog ticker for the gold spot entry referenced by
// gold holdings.
const GoldTicker = "GOLD"

// Asset is a catalog entry for a tradable instrument. Refreshed by the
// catalog collector; read-only to the valuation path.
type Asset struct {
	Ticker      string        `json:"ticker"`
	Name        string        `json:"name"`
	NameAr      string        `json:"name_ar"`
	Category    AssetCategory `json:"category"`
	Country     string        `json:"country"`
	Currency    string        `json:"currency"`
	Price       float64       `json:"price"`
	Change      float64       `json:"change"`     // absolute change, latest tick
	ChangePct   float64       `json:"change_pct"` // percent change, latest tick
	AnnualYield float64       `json:"annual_yield,omitempty"`
	LastUpdated time.Time     `json:"last_updated"`
}

// RealEstateCity is a catalog entry for average residential prices in a city.
type RealEstateCity struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	NameAr      string    `json:"name_ar"`
	PricePerSqM float64   `json:"price_per_sqm"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"last_updated"`
}

// Catalog is an immutable point-in-time snapshot of all catalog entries,
// indexed for lookup during valuation.
type Catalog struct {
	Assets      map[string]*Asset
	Cities      map[string]*RealEstateCity
	RefreshedAt time.Time
}

// NewCatalog builds an indexed catalog snapshot from entry lists.
// Ticker and city keys are normalized to upper/lower case respectively.
func NewCatalog(assets []*Asset, cities []*RealEstateCity, refreshedAt time.Time) *Catalog {
	c := &Catalog{
		Assets:      make(map[string]*Asset, len(assets)),
		Cities:      make(map[string]*RealEstateCity, len(cities)),
		RefreshedAt: refreshedAt,
	}
	for _, a := range assets {
		c.Assets[NormalizeTicker(a.Ticker)] = a
	}
	for _, city := range cities {
		c.Cities[NormalizeCityKey(city.Key)] = city
	}
	return c
}

// LookupAsset resolves a ticker to its catalog entry, or nil if absent.
func (c *Catalog) LookupAsset(ticker string) *Asset {
	if c == nil {
		return nil
	}
	return c.Assets[NormalizeTicker(ticker)]
}

// LookupCity resolves a city key to its catalog entry, or nil if absent.
func (c *Catalog) LookupCity(key string) *RealEstateCity {
	if c == nil {
		return nil
	}
	return c.Cities[NormalizeCityKey(key)]
}

// Gold returns the gold spot catalog entry, or nil if absent.
func (c *Catalog) Gold() *Asset {
	return c.LookupAsset(GoldTicker)
}

// NormalizeTicker canonicalizes a ticker for catalog lookup.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// NormalizeCityKey canonicalizes a city key for catalog lookup.
func NormalizeCityKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
