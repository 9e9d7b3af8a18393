package models

import "time"

// RiskLevel bounds the risk appetite a client can declare in their profile.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ClientProfile is the structured input to strategy generation.
type ClientProfile struct {
	Capital    float64         `json:"capital"`
	Currency   string          `json:"currency"`
	Categories []AssetCategory `json:"categories"`
	RiskLevel  RiskLevel       `json:"risk_level"`
	Goals      string          `json:"goals"`
}

// CategoryAllocation is one slice of a strategy's recommended allocation.
// Percentages across a strategy's allocations sum to 100 after normalization.
type CategoryAllocation struct {
	Category   AssetCategory `json:"category"`
	Percentage float64       `json:"percentage"`
	Rationale  string        `json:"rationale"`
}

// StockRecommendation is a single recommended instrument within a strategy.
type StockRecommendation struct {
	Ticker        string `json:"ticker"`
	Name          string `json:"name"`
	Justification string `json:"justification"`
}

// InvestmentStrategy is an AI-generated strategy document. Immutable once
// saved; owned by one user; listed newest-first.
type InvestmentStrategy struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	Title           string                `json:"title"`
	Summary         string                `json:"summary"`
	Allocations     []CategoryAllocation  `json:"allocations"`
	Recommendations []StockRecommendation `json:"recommendations"`
	RiskAnalysis    string                `json:"risk_analysis"`

	// Renormalized records whether the allocation percentages returned by the
	// generator had to be rescaled to sum to 100.
	Renormalized bool      `json:"renormalized,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StockAnalysis is an AI-generated per-ticker analysis. Not persisted.
type StockAnalysis struct {
	Ticker      string    `json:"ticker"`
	Analysis    string    `json:"analysis"`
	GeneratedAt time.Time `json:"generated_at"`
}
