package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// countingRefresher counts cycles and can be made to fail or block.
type countingRefresher struct {
	calls    int64
	failures int64
	err      error
	block    chan struct{}
	mu       sync.Mutex
	inflight int
	maxSeen  int
}

func (r *countingRefresher) Refresh(ctx context.Context) (*types.PortfolioReport, error) {
	r.mu.Lock()
	r.inflight++
	if r.inflight > r.maxSeen {
		r.maxSeen = r.inflight
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inflight--
		r.mu.Unlock()
	}()

	if r.block != nil {
		<-r.block
	}

	n := atomic.AddInt64(&r.calls, 1)
	if r.err != nil {
		atomic.AddInt64(&r.failures, 1)
		return nil, r.err
	}
	return &types.PortfolioReport{ReportID: fmt.Sprintf("report-%d", n)}, nil
}

func TestNewRefreshWorkerValidation(t *testing.T) {
	if _, err := NewRefreshWorker(&RefreshWorkerConfig{}); err == nil {
		t.Error("NewRefreshWorker() with nil refresher returned no error")
	}

	w, err := NewRefreshWorker(&RefreshWorkerConfig{Refresher: &countingRefresher{}})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}
	if w.interval != 15*time.Second {
		t.Errorf("default interval = %v, want 15s", w.interval)
	}
}

func TestRefreshWorkerRunsImmediatelyThenOnTicks(t *testing.T) {
	refresher := &countingRefresher{}
	w, err := NewRefreshWorker(&RefreshWorkerConfig{
		Refresher: refresher,
		Interval:  20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&refresher.calls) < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d cycles ran before deadline", atomic.LoadInt64(&refresher.calls))
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	status := w.GetStatus()
	if status.Running {
		t.Error("status.Running = true after Stop")
	}
	if status.CyclesRun < 3 {
		t.Errorf("CyclesRun = %d, want >= 3", status.CyclesRun)
	}
	if status.LastReportID == "" {
		t.Error("LastReportID is empty after successful cycles")
	}
}

func TestRefreshWorkerDoubleStartAndDoubleStop(t *testing.T) {
	w, err := NewRefreshWorker(&RefreshWorkerConfig{
		Refresher: &countingRefresher{},
		Interval:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}
	ctx := context.Background()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start() returned no error")
	}
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(ctx); err == nil {
		t.Error("second Stop() returned no error")
	}
}

func TestRefreshWorkerSurvivesCycleFailures(t *testing.T) {
	refresher := &countingRefresher{err: fmt.Errorf("upstream down")}
	w, err := NewRefreshWorker(&RefreshWorkerConfig{
		Refresher: refresher,
		Interval:  10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&refresher.calls) < 2 {
		select {
		case <-deadline:
			t.Fatal("worker stopped cycling after a failure")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	status := w.GetStatus()
	if status.CyclesFailed < 2 {
		t.Errorf("CyclesFailed = %d, want >= 2", status.CyclesFailed)
	}
	if status.LastReportID != "" {
		t.Errorf("LastReportID = %q after only failed cycles, want empty", status.LastReportID)
	}
}

func TestRefreshWorkerCyclesNeverOverlap(t *testing.T) {
	refresher := &countingRefresher{block: make(chan struct{})}
	w, err := NewRefreshWorker(&RefreshWorkerConfig{
		Refresher: refresher,
		Interval:  5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Let several intervals elapse while the first cycle is stuck
	time.Sleep(50 * time.Millisecond)
	close(refresher.block)

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	refresher.mu.Lock()
	maxSeen := refresher.maxSeen
	refresher.mu.Unlock()
	if maxSeen > 1 {
		t.Errorf("observed %d concurrent cycles, want 1", maxSeen)
	}
}

func TestRefreshWorkerStopsOnContextCancel(t *testing.T) {
	refresher := &countingRefresher{}
	w, err := NewRefreshWorker(&RefreshWorkerConfig{
		Refresher: refresher,
		Interval:  10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRefreshWorker() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	select {
	case <-w.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not exit on context cancel")
	}
}
