// Package fetcher provides a rate-limited, batched, concurrent fetcher for
// upstream market-data providers.
//
// Providers here have no bulk endpoint, may reject any single request
// independently of the others, and penalize high request rates. The fetcher
// therefore partitions symbols into fixed-size batches, fans out one lookup
// per symbol inside a batch, waits for the whole batch to settle, and sleeps
// a fixed delay before the next batch. An individual failure degrades that
// one symbol to an unknown marker and never aborts the call.
package fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/errors"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
)

// Lookup fetches the data item for a single symbol. Implementations must
// honor ctx cancellation; a lookup that ignores it is abandoned on timeout
// and its eventual result discarded.
type Lookup[T any] func(ctx context.Context, symbol string) (T, error)

// Result holds the outcome for one symbol. Found is false when the lookup
// errored, timed out, or returned no usable data.
type Result[T any] struct {
	Value T
	Found bool
}

// Config holds the tuning for one fetcher instance
type Config struct {
	// Provider names the upstream, for logging only
	Provider string
	// BatchSize is the maximum number of concurrent lookups per batch
	BatchSize int
	// InterBatchDelay is the pause between consecutive batches
	InterBatchDelay time.Duration
	// PerItemTimeout bounds each individual lookup
	PerItemTimeout time.Duration
}

// Fetcher fetches one data item per symbol from a single upstream provider.
// Instances are safe for concurrent use, though overlapping FetchAll calls
// are not mutually rate limited; callers wanting a strict request rate
// should serialize cycles.
type Fetcher[T any] struct {
	cfg    Config
	lookup Lookup[T]
	logger *logging.Logger
}

// New creates a fetcher for the given provider lookup
func New[T any](cfg Config, lookup Lookup[T]) (*Fetcher[T], error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.PerItemTimeout <= 0 {
		return nil, fmt.Errorf("per-item timeout must be positive, got %v", cfg.PerItemTimeout)
	}
	if lookup == nil {
		return nil, fmt.Errorf("lookup function cannot be nil")
	}

	return &Fetcher[T]{
		cfg:    cfg,
		lookup: lookup,
		logger: logging.GetGlobalLogger().WithField("provider", cfg.Provider),
	}, nil
}

// validateSymbols enforces the input contract before any I/O is attempted
func validateSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return errors.NewEmptySymbolsError()
	}

	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if strings.TrimSpace(s) == "" {
			return errors.NewInvalidSymbolError(s, "symbol is blank")
		}
		if _, dup := seen[s]; dup {
			return errors.NewDuplicateSymbolError(s)
		}
		seen[s] = struct{}{}
	}

	return nil
}

// FetchAll fetches one item per symbol and returns a map with exactly one
// entry per input symbol: either a found value or an unknown marker.
//
// Batches run sequentially, symbols within a batch concurrently. The only
// errors returned are input-contract violations (empty list, blank or
// duplicate symbols) and context cancellation between batches; upstream
// failures are absorbed per symbol.
func (f *Fetcher[T]) FetchAll(ctx context.Context, symbols []string) (map[string]Result[T], error) {
	if err := validateSymbols(symbols); err != nil {
		return nil, err
	}

	results := make(map[string]Result[T], len(symbols))
	var mu sync.Mutex

	for start := 0; start < len(symbols); start += f.cfg.BatchSize {
		end := start + f.cfg.BatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		var wg sync.WaitGroup
		for _, symbol := range batch {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()

				res := f.fetchOne(ctx, symbol)

				mu.Lock()
				results[symbol] = res
				mu.Unlock()
			}(symbol)
		}
		wg.Wait()

		// Throttle between batches, not after the last one
		if end < len(symbols) && f.cfg.InterBatchDelay > 0 {
			select {
			case <-time.After(f.cfg.InterBatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return results, nil
}

// fetchOne runs a single lookup under the per-item timeout. The lookup runs
// in its own goroutine so a hung provider call cannot stall the batch past
// the deadline; siblings are unaffected either way.
func (f *Fetcher[T]) fetchOne(ctx context.Context, symbol string) Result[T] {
	itemCtx, cancel := context.WithTimeout(ctx, f.cfg.PerItemTimeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		v, err := f.lookup(itemCtx, symbol)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			f.logger.WithField("symbol", symbol).WithError(out.err).Debug("lookup failed, marking unknown")
			return Result[T]{Found: false}
		}
		return Result[T]{Value: out.value, Found: true}
	case <-itemCtx.Done():
		f.logger.WithField("symbol", symbol).Debug("lookup timed out, marking unknown")
		return Result[T]{Found: false}
	}
}
