package models

import "time"

// Watchlist is the set of tickers a user tracks on the dashboard.
// One watchlist per user.
type Watchlist struct {
	UserID    string    `json:"user_id"`
	Tickers   []string  `json:"tickers"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether ticker is already on the watchlist.
func (w *Watchlist) Contains(ticker string) bool {
	t := NormalizeTicker(ticker)
	for _, existing := range w.Tickers {
		if existing == t {
			return true
		}
	}
	return false
}
