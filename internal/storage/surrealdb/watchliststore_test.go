package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

func TestWatchlistRoundTrip(t *testing.T) {
	m := testManager(t)
	store := m.watchlistStore
	ctx := context.Background()

	wl := &models.Watchlist{
		UserID:    "user1",
		Tickers:   []string{"2222", "1120"},
		UpdatedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveWatchlist(ctx, wl))

	got, err := store.GetWatchlist(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2222", "1120"}, got.Tickers)
}

func TestWatchlistMissingUser(t *testing.T) {
	m := testManager(t)

	_, err := m.watchlistStore.GetWatchlist(context.Background(), "nobody")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestWatchlistSaveReplaces(t *testing.T) {
	m := testManager(t)
	store := m.watchlistStore
	ctx := context.Background()

	require.NoError(t, store.SaveWatchlist(ctx, &models.Watchlist{
		UserID: "user1", Tickers: []string{"2222"}, UpdatedAt: time.Now(),
	}))
	require.NoError(t, store.SaveWatchlist(ctx, &models.Watchlist{
		UserID: "user1", Tickers: []string{"1120", "7010"}, UpdatedAt: time.Now(),
	}))

	got, err := store.GetWatchlist(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1120", "7010"}, got.Tickers)
}
