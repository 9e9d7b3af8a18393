package models

import "time"

// Portfolio groups holdings for a single user. Deleting a portfolio deletes
// its holdings (composition).
type Portfolio struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichedHolding is a holding joined with its catalog entry: resolved name,
// current value and unrealized P&L. Computed fresh on every read, never
// persisted.
type EnrichedHolding struct {
	HoldingID     string        `json:"holding_id"`
	Category      AssetCategory `json:"category"`
	Ticker        string        `json:"ticker,omitempty"`
	Name          string        `json:"name"`
	NameAr        string        `json:"name_ar,omitempty"`
	Currency      string        `json:"currency"`
	PurchaseValue float64       `json:"purchase_value"`
	CurrentValue  float64       `json:"current_value"`
	Change        float64       `json:"change"`
	ChangePct     float64       `json:"change_pct"`
}

// StaleReference flags a holding whose catalog reference could not be
// resolved. The holding contributes nothing to totals; surfacing the miss
// here keeps it from disappearing silently.
type StaleReference struct {
	HoldingID string        `json:"holding_id"`
	Category  AssetCategory `json:"category"`
	Reference string        `json:"reference"` // the ticker or city key that failed to resolve
	Reason    string        `json:"reason"`
}

// PortfolioValuation is the portfolio-level read model: enriched holdings,
// stale-reference warnings, and aggregate totals. Derived, never persisted.
type PortfolioValuation struct {
	PortfolioID        string            `json:"portfolio_id"`
	PortfolioName      string            `json:"portfolio_name"`
	Holdings           []EnrichedHolding `json:"holdings"`
	StaleReferences    []StaleReference  `json:"stale_references,omitempty"`
	TotalPurchaseValue float64           `json:"total_purchase_value"`
	TotalCurrentValue  float64           `json:"total_current_value"`
	TotalChange        float64           `json:"total_change"`
	TotalChangePct     float64           `json:"total_change_pct"`

	// DisplayTotal formats TotalCurrentValue as SAR. Totals are summed
	// across currencies without conversion (see valuation.SumAssumingSameCurrency).
	DisplayTotal string    `json:"display_total"`
	ValuedAt     time.Time `json:"valued_at"`
}
