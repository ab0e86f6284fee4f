// Package types provides common type definitions for the portfolio dashboard system.
package types

import "time"

// Exchange represents the trading venue a holding is listed on
type Exchange string

const (
	// ExchangeNSE represents the National Stock Exchange of India
	ExchangeNSE Exchange = "NSE"
	// ExchangeBSE represents the Bombay Stock Exchange
	ExchangeBSE Exchange = "BSE"
)

// Holding represents a single static portfolio position.
// Holdings are loaded once at process start and never mutated.
type Holding struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`          // Display name (e.g., "HDFC Bank")
	PurchasePrice float64  `json:"purchasePrice"` // Cost basis per share
	Quantity      int64    `json:"quantity"`
	Sector        string   `json:"sector"`
	Exchange      Exchange `json:"exchange"`
	Symbol        string   `json:"symbol"` // Upstream lookup symbol (e.g., "HDFCBANK.NS")
}

// Quote represents a fetched market price for a symbol.
// A nil Price means the upstream could not supply a usable value this
// cycle; that is distinct from a price of zero.
type Quote struct {
	Symbol string   `json:"symbol"`
	Price  *float64 `json:"price"`
}

// Known reports whether the quote carries a usable price.
func (q Quote) Known() bool {
	return q.Price != nil
}

// Fundamentals represents the P/E ratio and latest earnings label for a
// symbol. Each field is independently nullable: a provider may yield one
// without the other and both must be preserved as-is.
type Fundamentals struct {
	PERatio        *float64 `json:"peRatio"`
	LatestEarnings *string  `json:"latestEarnings"`
}

// ValuedHolding represents a holding with derived valuation metrics.
// Recomputed on every refresh cycle, never persisted.
type ValuedHolding struct {
	Holding

	Investment       float64  `json:"investment"`                 // PurchasePrice × Quantity
	PortfolioPercent *float64 `json:"portfolioPercent"`           // nil when investment is zero
	CurrentPrice     float64  `json:"currentPrice"`               // Quote, or PurchasePrice when the quote is unknown
	PriceUnknown     bool     `json:"priceUnknown,omitempty"`     // True when CurrentPrice is the fallback
	PresentValue     float64  `json:"presentValue"`               // CurrentPrice × Quantity
	GainLoss         float64  `json:"gainLoss"`                   // PresentValue − Investment
	GainLossPercent  *float64 `json:"gainLossPercent"`            // nil when investment is zero
	PERatio          *float64 `json:"peRatio"`                    // Passed through from fundamentals
	LatestEarnings   *string  `json:"latestEarnings"`             // Passed through from fundamentals
}

// SectorSummary represents the aggregate figures for one sector.
type SectorSummary struct {
	Sector            string          `json:"sector"`
	Holdings          []ValuedHolding `json:"holdings"`
	TotalInvestment   float64         `json:"totalInvestment"`
	TotalPresentValue float64         `json:"totalPresentValue"`
	GainLoss          float64         `json:"gainLoss"`
	GainLossPercent   *float64        `json:"gainLossPercent"` // nil when TotalInvestment is zero
}

// PortfolioReport is the complete output of one valuation cycle.
// Sector summaries are ordered descending by total investment.
type PortfolioReport struct {
	ReportID             string          `json:"reportId,omitempty"`
	GeneratedAt          time.Time       `json:"generatedAt,omitzero"`
	Rows                 []ValuedHolding `json:"rows"`
	SectorSummaries      []SectorSummary `json:"sectorSummaries"`
	TotalInvestment      float64         `json:"totalInvestment"`
	TotalPresentValue    float64         `json:"totalPresentValue"`
	TotalGainLoss        float64         `json:"totalGainLoss"`
	TotalGainLossPercent *float64        `json:"totalGainLossPercent"`
}

// PriceMap maps a symbol to its fetched quote. Every requested symbol is
// present, mapped to either a known price or an unknown marker.
type PriceMap map[string]Quote

// FundamentalsMap maps a symbol to its fetched fundamentals. Every
// requested symbol is present; missing data is represented by nil fields.
type FundamentalsMap map[string]Fundamentals

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Float64Ptr returns a pointer to the given float64.
func Float64Ptr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to the given string.
func StringPtr(v string) *string {
	return &v
}
