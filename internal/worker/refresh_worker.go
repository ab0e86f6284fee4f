// Package worker provides the background refresh worker that keeps the
// portfolio report warm.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// Refresher rebuilds the portfolio report from upstream data.
type Refresher interface {
	Refresh(ctx context.Context) (*types.PortfolioReport, error)
}

// RefreshWorker periodically rebuilds the portfolio report so API reads
// serve a warm copy. Cycles run strictly one at a time; a cycle that
// outlasts the interval delays the next tick rather than overlapping it.
type RefreshWorker struct {
	refresher     Refresher
	interval      time.Duration
	logger        *logging.Logger
	running       bool
	mu            sync.RWMutex
	stopCh        chan struct{}
	doneCh        chan struct{}
	lastCycleTime time.Time
	lastReportID  string
	cyclesRun     int
	cyclesFailed  int
}

// RefreshWorkerConfig holds configuration for a refresh worker
type RefreshWorkerConfig struct {
	Refresher Refresher
	Interval  time.Duration // Default: 15 seconds
}

// RefreshWorkerStatus is a snapshot of worker state for health reporting.
type RefreshWorkerStatus struct {
	Running         bool      `json:"running"`
	LastCycleTime   time.Time `json:"lastCycleTime"`
	LastReportID    string    `json:"lastReportId"`
	CyclesRun       int       `json:"cyclesRun"`
	CyclesFailed    int       `json:"cyclesFailed"`
	IntervalSeconds int       `json:"intervalSeconds"`
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(cfg *RefreshWorkerConfig) (*RefreshWorker, error) {
	if cfg.Refresher == nil {
		return nil, fmt.Errorf("refresher cannot be nil")
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = 15 * time.Second
	}
	if interval < 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %v", interval)
	}

	return &RefreshWorker{
		refresher: cfg.Refresher,
		interval:  interval,
		logger:    logging.GetGlobalLogger(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins the refresh loop. The first cycle runs immediately so a
// fresh process serves real data without waiting out an interval.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.WithField("interval", w.interval.String()).Info("starting refresh worker")

	go w.refreshLoop(ctx)

	return nil
}

// Stop gracefully stops the refresh worker, waiting for an in-flight
// cycle to finish.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is not running")
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.Info("refresh worker stopped")
	case <-ctx.Done():
		w.logger.Warn("refresh worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

func (w *RefreshWorker) refreshLoop(ctx context.Context) {
	defer close(w.doneCh)

	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresh worker context cancelled")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle executes one refresh. Failures are logged and counted; the
// loop continues on the next tick.
func (w *RefreshWorker) runCycle(ctx context.Context) {
	start := time.Now()

	report, err := w.refresher.Refresh(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastCycleTime = start
	w.cyclesRun++

	if err != nil {
		w.cyclesFailed++
		w.logger.WithError(err).Error("refresh cycle failed")
		return
	}

	w.lastReportID = report.ReportID
	w.logger.WithFields(map[string]interface{}{
		"reportId": report.ReportID,
		"duration": time.Since(start).String(),
	}).Debug("refresh cycle complete")
}

// GetStatus returns current worker status
func (w *RefreshWorker) GetStatus() *RefreshWorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return &RefreshWorkerStatus{
		Running:         w.running,
		LastCycleTime:   w.lastCycleTime,
		LastReportID:    w.lastReportID,
		CyclesRun:       w.cyclesRun,
		CyclesFailed:    w.cyclesFailed,
		IntervalSeconds: int(w.interval.Seconds()),
	}
}
