package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// setupTestReportCache creates a ReportCache backed by a test Redis instance.
func setupTestReportCache(t *testing.T, ttl time.Duration) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewReportCache(NewRedisCacheFromClient(client), ttl), mr
}

func sampleReport() *types.PortfolioReport {
	pct := 10.0
	return &types.PortfolioReport{
		ReportID:    "test-report-1",
		GeneratedAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC),
		Rows: []types.ValuedHolding{
			{
				Holding: types.Holding{
					ID: "1", Name: "HDFC Bank", PurchasePrice: 1490, Quantity: 50,
					Sector: "Financial", Exchange: types.ExchangeNSE, Symbol: "HDFCBANK.NS",
				},
				Investment:   74500,
				CurrentPrice: 1639,
				PresentValue: 81950,
				GainLoss:     7450,
			},
		},
		TotalInvestment:      74500,
		TotalPresentValue:    81950,
		TotalGainLoss:        7450,
		TotalGainLossPercent: &pct,
	}
}

func TestReportCacheRoundTrip(t *testing.T) {
	cache, _ := setupTestReportCache(t, time.Minute)
	ctx := context.Background()

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleReport()
	require.NoError(t, cache.Set(ctx, want))

	got, found, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.ReportID, got.ReportID)
	assert.Equal(t, want.TotalInvestment, got.TotalInvestment)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "HDFCBANK.NS", got.Rows[0].Symbol)
	require.NotNil(t, got.TotalGainLossPercent)
	assert.Equal(t, 10.0, *got.TotalGainLossPercent)
}

func TestReportCacheExpiry(t *testing.T) {
	cache, mr := setupTestReportCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleReport()))

	mr.FastForward(61 * time.Second)

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReportCacheInvalidate(t *testing.T) {
	cache, _ := setupTestReportCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleReport()))
	require.NoError(t, cache.Invalidate(ctx))

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReportCacheNilSafe(t *testing.T) {
	var cache *ReportCache
	ctx := context.Background()

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, sampleReport()))
	assert.NoError(t, cache.Invalidate(ctx))
}
