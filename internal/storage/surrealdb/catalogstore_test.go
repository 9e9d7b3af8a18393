package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tharwatech/mahfaza/internal/models"
)

func TestSaveAndGetCatalog(t *testing.T) {
	m := testManager(t)
	store := m.catalogStore
	ctx := context.Background()

	assets := []*models.Asset{
		{Ticker: "2222", Name: "Saudi Aramco", Category: models.CategoryStocks, Currency: models.CurrencySAR, Price: 28.5, LastUpdated: time.Now().Truncate(time.Second)},
		{Ticker: models.GoldTicker, Name: "Gold", Category: models.CategoryGold, Currency: models.CurrencyUSD, Price: 2400, Change: 48, LastUpdated: time.Now().Truncate(time.Second)},
	}
	cities := []*models.RealEstateCity{
		{Key: "riyadh", Name: "Riyadh", PricePerSqM: 8000, Currency: models.CurrencySAR, LastUpdated: time.Now().Truncate(time.Second)},
	}

	require.NoError(t, store.SaveAssets(ctx, assets))
	require.NoError(t, store.SaveCities(ctx, cities))

	catalog, err := store.GetCatalog(ctx)
	require.NoError(t, err)

	aramco := catalog.LookupAsset("2222")
	require.NotNil(t, aramco)
	assert.Equal(t, 28.5, aramco.Price)

	assert.NotNil(t, catalog.Gold())
	assert.NotNil(t, catalog.LookupCity("RIYADH")) // lookup is case-insensitive
	assert.Nil(t, catalog.LookupAsset("9999"))
}

func TestSaveAssetsOverwrites(t *testing.T) {
	m := testManager(t)
	store := m.catalogStore
	ctx := context.Background()

	first := []*models.Asset{{Ticker: "1120", Name: "Al Rajhi", Category: models.CategoryStocks, Currency: models.CurrencySAR, Price: 80}}
	require.NoError(t, store.SaveAssets(ctx, first))

	second := []*models.Asset{{Ticker: "1120", Name: "Al Rajhi Bank", Category: models.CategoryStocks, Currency: models.CurrencySAR, Price: 82.4}}
	require.NoError(t, store.SaveAssets(ctx, second))

	catalog, err := store.GetCatalog(ctx)
	require.NoError(t, err)

	a := catalog.LookupAsset("1120")
	require.NotNil(t, a)
	assert.Equal(t, 82.4, a.Price)
	assert.Equal(t, "Al Rajhi Bank", a.Name)
}

func TestGetCatalogEmpty(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	catalog, err := m.catalogStore.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Nil(t, catalog.LookupAsset("2222"))
	assert.Nil(t, catalog.Gold())
}
