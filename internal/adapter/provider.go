// Package adapter provides clients for the upstream market-data providers.
//
// Both providers are unofficial endpoints with no stability guarantees, so
// the clients are kept behind narrow lookup interfaces that the pipeline
// core consumes; transport, response parsing, and symbol conversion stay in
// this package.
package adapter

import (
	"context"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// PriceProvider looks up the current market price for one symbol
type PriceProvider interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// FundamentalsProvider looks up P/E ratio and latest earnings for one symbol
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (types.Fundamentals, error)
}
