package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharwatech/mahfaza/internal/interfaces"
	"github.com/tharwatech/mahfaza/internal/models"
)

func newTestPortfolio(userID, name string) *models.Portfolio {
	return &models.Portfolio{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func newTestHolding(portfolioID string) *models.Holding {
	h := models.NewStockHolding("2222", 100, 2700)
	h.ID = uuid.New().String()
	h.PortfolioID = portfolioID
	h.CreatedAt = time.Now().Truncate(time.Second)
	return h
}

func TestCreateAndGetPortfolio(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	p := newTestPortfolio("user1", "محفظة التقاعد")
	require.NoError(t, store.CreatePortfolio(ctx, p))

	got, err := store.GetPortfolio(ctx, "user1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "محفظة التقاعد", got.Name)
}

func TestGetPortfolioWrongOwner(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	p := newTestPortfolio("user1", "mine")
	require.NoError(t, store.CreatePortfolio(ctx, p))

	_, err := store.GetPortfolio(ctx, "intruder", p.ID)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestListPortfolios(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	require.NoError(t, store.CreatePortfolio(ctx, newTestPortfolio("user1", "a")))
	require.NoError(t, store.CreatePortfolio(ctx, newTestPortfolio("user1", "b")))
	require.NoError(t, store.CreatePortfolio(ctx, newTestPortfolio("user2", "c")))

	list, err := store.ListPortfolios(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAddListRemoveHolding(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	p := newTestPortfolio("user1", "stocks")
	require.NoError(t, store.CreatePortfolio(ctx, p))

	h := newTestHolding(p.ID)
	require.NoError(t, store.AddHolding(ctx, h))

	holdings, err := store.ListHoldings(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "2222", holdings[0].Ticker)
	assert.Equal(t, models.CategoryStocks, holdings[0].Category)

	require.NoError(t, store.RemoveHolding(ctx, p.ID, h.ID))

	holdings, err = store.ListHoldings(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestRemoveHoldingWrongPortfolio(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	p := newTestPortfolio("user1", "stocks")
	require.NoError(t, store.CreatePortfolio(ctx, p))
	h := newTestHolding(p.ID)
	require.NoError(t, store.AddHolding(ctx, h))

	err := store.RemoveHolding(ctx, "other-portfolio", h.ID)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestDeletePortfolioCascadesHoldings(t *testing.T) {
	m := testManager(t)
	store := m.portfolioStore
	ctx := context.Background()

	p := newTestPortfolio("user1", "doomed")
	require.NoError(t, store.CreatePortfolio(ctx, p))
	require.NoError(t, store.AddHolding(ctx, newTestHolding(p.ID)))
	require.NoError(t, store.AddHolding(ctx, newTestHolding(p.ID)))

	require.NoError(t, store.DeletePortfolio(ctx, "user1", p.ID))

	_, err := store.GetPortfolio(ctx, "user1", p.ID)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	holdings, err := store.ListHoldings(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}
