package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/config"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// stubPriceProvider serves prices from a fixed map and counts calls.
type stubPriceProvider struct {
	prices map[string]float64
	calls  int64
}

func (p *stubPriceProvider) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	atomic.AddInt64(&p.calls, 1)
	price, ok := p.prices[symbol]
	if !ok {
		return 0, errors.NewNoDataError("yahoo", symbol)
	}
	return price, nil
}

type stubFundamentalsProvider struct {
	fundamentals map[string]types.Fundamentals
	calls        int64
}

func (p *stubFundamentalsProvider) FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error) {
	atomic.AddInt64(&p.calls, 1)
	f, ok := p.fundamentals[symbol]
	if !ok {
		return types.Fundamentals{}, errors.NewNoDataError("google-finance", symbol)
	}
	return f, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			PriceTTL:        time.Minute,
			FundamentalsTTL: time.Minute,
		},
		Fetch: config.FetchConfig{
			PriceBatchSize:          5,
			PriceInterBatchDelay:    0,
			PriceItemTimeout:        time.Second,
			FundamentalsBatchSize:   3,
			FundamentalsBatchDelay:  0,
			FundamentalsItemTimeout: time.Second,
		},
	}
}

func newTestMarketDataService(t *testing.T, prices *stubPriceProvider, fundamentals *stubFundamentalsProvider) *MarketDataService {
	t.Helper()
	svc, err := NewMarketDataService(testConfig(), prices, fundamentals)
	if err != nil {
		t.Fatalf("NewMarketDataService() error = %v", err)
	}
	return svc
}

func TestGetPricesCacheMissThenHit(t *testing.T) {
	prices := &stubPriceProvider{prices: map[string]float64{"A.NS": 101.5, "B.NS": 42}}
	svc := newTestMarketDataService(t, prices, &stubFundamentalsProvider{})
	ctx := context.Background()
	symbols := []string{"A.NS", "B.NS"}

	got, cached, err := svc.GetPrices(ctx, symbols)
	if err != nil {
		t.Fatalf("GetPrices() error = %v", err)
	}
	if cached {
		t.Error("first call reported cached = true")
	}
	if q := got["A.NS"]; !q.Known() || *q.Price != 101.5 {
		t.Errorf("A.NS quote = %+v, want known 101.5", q)
	}
	if calls := atomic.LoadInt64(&prices.calls); calls != 2 {
		t.Errorf("provider calls = %d, want 2", calls)
	}

	got, cached, err = svc.GetPrices(ctx, symbols)
	if err != nil {
		t.Fatalf("GetPrices() second call error = %v", err)
	}
	if !cached {
		t.Error("second call reported cached = false")
	}
	if calls := atomic.LoadInt64(&prices.calls); calls != 2 {
		t.Errorf("provider calls after cache hit = %d, want 2", calls)
	}
	if len(got) != 2 {
		t.Errorf("cached result has %d symbols, want 2", len(got))
	}
}

func TestGetPricesUnknownSymbolsMarked(t *testing.T) {
	prices := &stubPriceProvider{prices: map[string]float64{"A.NS": 100}}
	svc := newTestMarketDataService(t, prices, &stubFundamentalsProvider{})

	got, _, err := svc.GetPrices(context.Background(), []string{"A.NS", "MISSING.NS"})
	if err != nil {
		t.Fatalf("GetPrices() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("result has %d symbols, want 2", len(got))
	}
	if q := got["MISSING.NS"]; q.Known() {
		t.Errorf("MISSING.NS = %+v, want unknown marker", q)
	}
	if q := got["A.NS"]; !q.Known() {
		t.Errorf("A.NS = %+v, want known", q)
	}
}

func TestGetPricesValidationErrorNotCached(t *testing.T) {
	prices := &stubPriceProvider{prices: map[string]float64{}}
	svc := newTestMarketDataService(t, prices, &stubFundamentalsProvider{})

	_, _, err := svc.GetPrices(context.Background(), nil)
	if err == nil {
		t.Fatal("GetPrices(nil) error = nil, want validation error")
	}
	if !errors.IsValidationError(err) {
		t.Errorf("error = %v, want validation category", err)
	}
	if calls := atomic.LoadInt64(&prices.calls); calls != 0 {
		t.Errorf("provider calls = %d, want 0", calls)
	}
}

func TestGetFundamentalsCacheAndPartialData(t *testing.T) {
	pe := 24.5
	fundamentals := &stubFundamentalsProvider{fundamentals: map[string]types.Fundamentals{
		"A.NS": {PERatio: &pe},
	}}
	svc := newTestMarketDataService(t, &stubPriceProvider{}, fundamentals)
	ctx := context.Background()
	symbols := []string{"A.NS", "B.NS"}

	got, cached, err := svc.GetFundamentals(ctx, symbols)
	if err != nil {
		t.Fatalf("GetFundamentals() error = %v", err)
	}
	if cached {
		t.Error("first call reported cached = true")
	}
	if f := got["A.NS"]; f.PERatio == nil || *f.PERatio != pe {
		t.Errorf("A.NS = %+v, want PERatio %v", f, pe)
	}
	if f := got["A.NS"]; f.LatestEarnings != nil {
		t.Errorf("A.NS LatestEarnings = %v, want nil", *f.LatestEarnings)
	}
	if f, ok := got["B.NS"]; !ok || f.PERatio != nil || f.LatestEarnings != nil {
		t.Errorf("B.NS = %+v (present %v), want empty marker entry", f, ok)
	}

	_, cached, err = svc.GetFundamentals(ctx, symbols)
	if err != nil {
		t.Fatalf("GetFundamentals() second call error = %v", err)
	}
	if !cached {
		t.Error("second call reported cached = false")
	}
	if calls := atomic.LoadInt64(&fundamentals.calls); calls != 2 {
		t.Errorf("provider calls = %d, want 2", calls)
	}
}

func TestPriceAndFundamentalsCachesAreIndependent(t *testing.T) {
	prices := &stubPriceProvider{prices: map[string]float64{"A.NS": 100}}
	fundamentals := &stubFundamentalsProvider{}
	svc := newTestMarketDataService(t, prices, fundamentals)
	ctx := context.Background()
	symbols := []string{"A.NS"}

	if _, _, err := svc.GetPrices(ctx, symbols); err != nil {
		t.Fatalf("GetPrices() error = %v", err)
	}
	// Warming the price cache must not warm the fundamentals cache
	_, cached, err := svc.GetFundamentals(ctx, symbols)
	if err != nil {
		t.Fatalf("GetFundamentals() error = %v", err)
	}
	if cached {
		t.Error("fundamentals reported cached after only a price fetch")
	}
}

func TestDifferentSymbolSetsGetDifferentCacheEntries(t *testing.T) {
	prices := &stubPriceProvider{prices: map[string]float64{"A.NS": 100, "B.NS": 200}}
	svc := newTestMarketDataService(t, prices, &stubFundamentalsProvider{})
	ctx := context.Background()

	if _, _, err := svc.GetPrices(ctx, []string{"A.NS"}); err != nil {
		t.Fatalf("GetPrices() error = %v", err)
	}
	_, cached, err := svc.GetPrices(ctx, []string{"A.NS", "B.NS"})
	if err != nil {
		t.Fatalf("GetPrices() error = %v", err)
	}
	if cached {
		t.Error("superset symbol list served from the subset's cache entry")
	}
}
