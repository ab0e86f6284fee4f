package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/storage"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// MarketDataProvider defines the fetch-path interface the report service
// consumes, for dependency injection and testing
type MarketDataProvider interface {
	GetPrices(ctx context.Context, symbols []string) (types.PriceMap, bool, error)
	GetFundamentals(ctx context.Context, symbols []string) (types.FundamentalsMap, bool, error)
}

// ReportService assembles portfolio reports: it runs the two fetch paths
// concurrently, feeds their output plus the static holdings into the
// valuation engine, and stamps the result.
type ReportService struct {
	holdings    *storage.HoldingsRepository
	marketData  MarketDataProvider
	reportCache *storage.ReportCache
	logger      *logging.Logger

	// rebuilds are serialized so overlapping refresh triggers cannot run
	// two fetch cycles against the providers at once
	rebuildMu sync.Mutex
}

// NewReportService creates a report service. reportCache may be nil, in
// which case every GetReport performs a full rebuild.
func NewReportService(
	holdings *storage.HoldingsRepository,
	marketData MarketDataProvider,
	reportCache *storage.ReportCache,
) *ReportService {
	return &ReportService{
		holdings:    holdings,
		marketData:  marketData,
		reportCache: reportCache,
		logger:      logging.GetGlobalLogger(),
	}
}

// GetReport returns the latest portfolio report, serving the warm copy from
// the report cache when present. The second return reports a cache hit.
func (s *ReportService) GetReport(ctx context.Context) (*types.PortfolioReport, bool, error) {
	if cached, found, err := s.reportCache.Get(ctx); err != nil {
		// A broken report cache degrades to a rebuild, it never fails
		// the report
		s.logger.WithError(err).Warn("report cache read failed, rebuilding")
	} else if found {
		return cached, true, nil
	}

	report, err := s.Refresh(ctx)
	if err != nil {
		return nil, false, err
	}
	return report, false, nil
}

// Refresh rebuilds the report from upstream data, bypassing the report
// cache on the way in and storing the fresh report on the way out.
//
// The two upstreams are fully independent, so their fetch paths run
// concurrently. A source that fails entirely contributes an all-unknown
// map; a report is always produced.
func (s *ReportService) Refresh(ctx context.Context) (*types.PortfolioReport, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	holdings := s.holdings.All()
	symbols := s.holdings.Symbols()

	var (
		wg           sync.WaitGroup
		prices       types.PriceMap
		fundamentals types.FundamentalsMap
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		prices, _, err = s.marketData.GetPrices(ctx, symbols)
		if err != nil {
			s.logger.WithError(err).Error("price fetch failed for the whole cycle")
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		fundamentals, _, err = s.marketData.GetFundamentals(ctx, symbols)
		if err != nil {
			s.logger.WithError(err).Error("fundamentals fetch failed for the whole cycle")
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A nil map from a failed source reads as unknown for every symbol
	// inside the engine, which is exactly the degradation we want.
	report := BuildReport(holdings, prices, fundamentals)
	report.ReportID = uuid.NewString()
	report.GeneratedAt = time.Now().UTC()

	if err := s.reportCache.Set(ctx, &report); err != nil {
		s.logger.WithError(err).Warn("failed to store report in cache")
	}

	return &report, nil
}
