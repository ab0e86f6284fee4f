// Package service contains the market-data fetch services, the valuation
// engine, and the report assembler.
package service

import (
	"sort"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// BuildReport derives a portfolio report from the static holdings list and
// the two fetched maps. It is a pure function: identical inputs produce
// identical output, with no clock, randomness, or I/O involved. ReportID
// and GeneratedAt are left zero; the report service stamps them.
//
// Symbols absent from either map are treated the same as explicit unknown
// markers, so a total upstream failure simply degrades every row.
func BuildReport(holdings []types.Holding, prices types.PriceMap, fundamentals types.FundamentalsMap) types.PortfolioReport {
	// The weight denominator is derived from cost basis alone, before any
	// per-holding metrics, so fluctuating quotes can never feed back into
	// portfolio percentages.
	var totalInvestment float64
	for _, h := range holdings {
		totalInvestment += h.PurchasePrice * float64(h.Quantity)
	}

	rows := make([]types.ValuedHolding, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, valueHolding(h, prices[h.Symbol], fundamentals[h.Symbol], totalInvestment))
	}

	summaries := groupBySector(rows)

	var totalPresentValue float64
	for _, row := range rows {
		totalPresentValue += row.PresentValue
	}
	totalGainLoss := totalPresentValue - totalInvestment

	return types.PortfolioReport{
		Rows:                 rows,
		SectorSummaries:      summaries,
		TotalInvestment:      totalInvestment,
		TotalPresentValue:    totalPresentValue,
		TotalGainLoss:        totalGainLoss,
		TotalGainLossPercent: percentOf(totalGainLoss, totalInvestment),
	}
}

// valueHolding computes the derived metrics for a single holding.
func valueHolding(h types.Holding, quote types.Quote, f types.Fundamentals, totalInvestment float64) types.ValuedHolding {
	investment := h.PurchasePrice * float64(h.Quantity)

	// A missing quote falls back to the cost-basis price. The row still
	// renders; only PriceUnknown tells the two cases apart.
	currentPrice := h.PurchasePrice
	priceUnknown := true
	if quote.Known() {
		currentPrice = *quote.Price
		priceUnknown = false
	}

	presentValue := currentPrice * float64(h.Quantity)
	gainLoss := presentValue - investment

	var portfolioPercent *float64
	if investment > 0 {
		portfolioPercent = percentOf(investment, totalInvestment)
	}

	return types.ValuedHolding{
		Holding:          h,
		Investment:       investment,
		PortfolioPercent: portfolioPercent,
		CurrentPrice:     currentPrice,
		PriceUnknown:     priceUnknown,
		PresentValue:     presentValue,
		GainLoss:         gainLoss,
		GainLossPercent:  percentOf(gainLoss, investment),
		PERatio:          f.PERatio,
		LatestEarnings:   f.LatestEarnings,
	}
}

// groupBySector partitions rows by sector label and aggregates each group,
// ordering groups descending by total investment. Ties keep the order in
// which the sectors were first encountered.
func groupBySector(rows []types.ValuedHolding) []types.SectorSummary {
	index := make(map[string]int)
	summaries := make([]types.SectorSummary, 0)

	for _, row := range rows {
		i, ok := index[row.Sector]
		if !ok {
			i = len(summaries)
			index[row.Sector] = i
			summaries = append(summaries, types.SectorSummary{Sector: row.Sector})
		}
		s := &summaries[i]
		s.Holdings = append(s.Holdings, row)
		s.TotalInvestment += row.Investment
		s.TotalPresentValue += row.PresentValue
	}

	for i := range summaries {
		s := &summaries[i]
		s.GainLoss = s.TotalPresentValue - s.TotalInvestment
		s.GainLossPercent = percentOf(s.GainLoss, s.TotalInvestment)
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].TotalInvestment > summaries[b].TotalInvestment
	})

	return summaries
}

// percentOf returns part/whole×100, or nil when the denominator is zero.
// The nil marker is what keeps NaN and Inf out of serialized reports.
func percentOf(part, whole float64) *float64 {
	if whole == 0 {
		return nil
	}
	v := part / whole * 100
	return &v
}
