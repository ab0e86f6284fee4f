package service

import (
	"context"
	"strings"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/adapter"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/cache"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/config"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/fetcher"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// MarketDataService owns the two fetch paths: live prices and fundamentals.
// Each path pairs a rate-limited batch fetcher with its own TTL cache;
// quotes go stale in seconds while fundamentals hold for minutes, so the
// two never share a freshness window.
type MarketDataService struct {
	priceFetcher        *fetcher.Fetcher[float64]
	fundamentalsFetcher *fetcher.Fetcher[types.Fundamentals]
	priceCache          *cache.Cache[types.PriceMap]
	fundamentalsCache   *cache.Cache[types.FundamentalsMap]
	logger              *logging.Logger
}

// NewMarketDataService wires the fetchers and caches from configuration.
// The provider lookups are injected, keeping this service agnostic to
// upstream transport and parsing.
func NewMarketDataService(
	cfg *config.Config,
	prices adapter.PriceProvider,
	fundamentals adapter.FundamentalsProvider,
) (*MarketDataService, error) {
	priceFetcher, err := fetcher.New(fetcher.Config{
		Provider:        "yahoo",
		BatchSize:       cfg.Fetch.PriceBatchSize,
		InterBatchDelay: cfg.Fetch.PriceInterBatchDelay,
		PerItemTimeout:  cfg.Fetch.PriceItemTimeout,
	}, prices.FetchPrice)
	if err != nil {
		return nil, err
	}

	fundamentalsFetcher, err := fetcher.New(fetcher.Config{
		Provider:        "google-finance",
		BatchSize:       cfg.Fetch.FundamentalsBatchSize,
		InterBatchDelay: cfg.Fetch.FundamentalsBatchDelay,
		PerItemTimeout:  cfg.Fetch.FundamentalsItemTimeout,
	}, fundamentals.FetchFundamentals)
	if err != nil {
		return nil, err
	}

	return &MarketDataService{
		priceFetcher:        priceFetcher,
		fundamentalsFetcher: fundamentalsFetcher,
		priceCache:          cache.New[types.PriceMap](cfg.Cache.PriceTTL),
		fundamentalsCache:   cache.New[types.FundamentalsMap](cfg.Cache.FundamentalsTTL),
		logger:              logging.GetGlobalLogger(),
	}, nil
}

// cacheKey derives one cache entry per ordered symbol set. Whole-set keying
// keeps a refresh cycle atomic: a symbol that was unknown in the cached
// cycle stays unknown until the whole entry expires, instead of being
// resurrected piecemeal.
func cacheKey(prefix string, symbols []string) string {
	return prefix + ":" + strings.Join(symbols, ",")
}

// GetPrices returns the current price per symbol, serving from cache while
// fresh. The second return reports whether the result came from cache.
// Every requested symbol is present in the result; symbols the provider
// could not serve carry an unknown marker.
func (s *MarketDataService) GetPrices(ctx context.Context, symbols []string) (types.PriceMap, bool, error) {
	key := cacheKey("prices", symbols)
	if cached, ok := s.priceCache.Get(key); ok {
		return cached, true, nil
	}

	results, err := s.priceFetcher.FetchAll(ctx, symbols)
	if err != nil {
		return nil, false, err
	}

	priceMap := make(types.PriceMap, len(results))
	unknown := 0
	for symbol, res := range results {
		q := types.Quote{Symbol: symbol}
		if res.Found {
			v := res.Value
			q.Price = &v
		} else {
			unknown++
		}
		priceMap[symbol] = q
	}

	if unknown > 0 {
		s.logger.WithFields(map[string]interface{}{
			"provider": "yahoo",
			"unknown":  unknown,
			"total":    len(symbols),
		}).Warn("some symbols resolved without a price this cycle")
	}

	s.priceCache.Set(key, priceMap)
	return priceMap, false, nil
}

// GetFundamentals returns P/E ratio and latest earnings per symbol, serving
// from cache while fresh. Partial data within one symbol is preserved
// field by field.
func (s *MarketDataService) GetFundamentals(ctx context.Context, symbols []string) (types.FundamentalsMap, bool, error) {
	key := cacheKey("fundamentals", symbols)
	if cached, ok := s.fundamentalsCache.Get(key); ok {
		return cached, true, nil
	}

	results, err := s.fundamentalsFetcher.FetchAll(ctx, symbols)
	if err != nil {
		return nil, false, err
	}

	fundamentalsMap := make(types.FundamentalsMap, len(results))
	for symbol, res := range results {
		if res.Found {
			fundamentalsMap[symbol] = res.Value
		} else {
			fundamentalsMap[symbol] = types.Fundamentals{}
		}
	}

	s.fundamentalsCache.Set(key, fundamentalsMap)
	return fundamentalsMap, false, nil
}

// CacheStats reports the sizes and windows of both caches.
func (s *MarketDataService) CacheStats() (prices, fundamentals cache.Stats) {
	return s.priceCache.GetStats(), s.fundamentalsCache.GetStats()
}
