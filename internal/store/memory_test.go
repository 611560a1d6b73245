package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchdeck/watchdeck/internal/models"
)

func sampleStock() models.Stock {
	return models.Stock{
		Symbol:        "AAPL",
		CompanyName:   "Apple Inc.",
		CurrentPrice:  231.5,
		Change:        1.2,
		ChangePercent: 0.52,
		LastUpdated:   time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Status:        models.StatusLoaded,
		PriceHistory:  []models.PricePoint{},
	}
}

func TestMemoryStoreEmptyLoads(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	stocks, err := st.LoadWatchlist(ctx)
	require.NoError(t, err)
	assert.Empty(t, stocks)

	selected, err := st.LoadSelected(ctx)
	require.NoError(t, err)
	assert.Nil(t, selected)

	history, err := st.LoadRefreshHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	last, err := st.LoadLastManualRefresh(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	names, err := st.LoadCompanyNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryStoreRoundTrips(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	t.Run("watchlist", func(t *testing.T) {
		want := []models.Stock{sampleStock()}
		require.NoError(t, st.SaveWatchlist(ctx, want))

		got, err := st.LoadWatchlist(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("selected and clearing it", func(t *testing.T) {
		stock := sampleStock()
		require.NoError(t, st.SaveSelected(ctx, &stock))

		got, err := st.LoadSelected(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "AAPL", got.Symbol)

		require.NoError(t, st.SaveSelected(ctx, nil))
		got, err = st.LoadSelected(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("refresh history", func(t *testing.T) {
		want := []time.Time{
			time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC),
		}
		require.NoError(t, st.SaveRefreshHistory(ctx, want))

		got, err := st.LoadRefreshHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("last manual refresh", func(t *testing.T) {
		want := time.Date(2026, 8, 30, 9, 5, 0, 0, time.UTC)
		require.NoError(t, st.SaveLastManualRefresh(ctx, want))

		got, err := st.LoadLastManualRefresh(ctx)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	})

	t.Run("company names", func(t *testing.T) {
		want := map[string]string{"AAPL": "Apple Inc.", "MSFT": "Microsoft Corporation"}
		require.NoError(t, st.SaveCompanyNames(ctx, want))

		got, err := st.LoadCompanyNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestMemoryStoreIsolation(t *testing.T) {
	// The store must not alias caller slices.
	ctx := context.Background()
	st := NewMemoryStore()

	original := []models.Stock{sampleStock()}
	require.NoError(t, st.SaveWatchlist(ctx, original))

	original[0].Symbol = "MUTATED"

	got, err := st.LoadWatchlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got[0].Symbol)
}
