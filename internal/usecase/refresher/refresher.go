package refresher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/simaogato/portfolio-backend/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSchedule    = "*/15 * * * *"
	DefaultConcurrency = 4
)

// SymbolLister lists the symbols worth keeping warm
type SymbolLister interface {
	Symbols(ctx context.Context) []string
}

// PriceRefresher forces a refetch of one symbol
type PriceRefresher interface {
	Refresh(ctx context.Context, symbol string) bool
}

// Refresher periodically refetches latest prices for every held symbol
// so that valuation requests find warm cache entries
type Refresher struct {
	Cron        *cron.Cron
	Symbols     SymbolLister
	Prices      PriceRefresher
	Concurrency int
	Timeout     time.Duration

	running atomic.Bool
}

// NewRefresher creates a new Refresher instance
func NewRefresher(symbols SymbolLister, prices PriceRefresher, concurrency int, timeout time.Duration) *Refresher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Refresher{
		Cron:        cron.New(),
		Symbols:     symbols,
		Prices:      prices,
		Concurrency: concurrency,
		Timeout:     timeout,
	}
}

// Register schedules the refresh job on a standard five-field cron spec
func (r *Refresher) Register(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := r.Cron.AddFunc(schedule, r.tick); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (r *Refresher) Start() {
	r.Cron.Start()
	logger.Infof("refresher: scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish
func (r *Refresher) Stop() {
	<-r.Cron.Stop().Done()
	logger.Infof("refresher: scheduler stopped")
}

func (r *Refresher) tick() {
	// skip the tick if the previous run is still in flight
	if !r.running.CompareAndSwap(false, true) {
		logger.Warnf("refresher: previous run still in progress, skipping")
		return
	}
	defer r.running.Store(false)

	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	refreshed, failed := r.RunOnce(ctx)
	logger.Infof("refresher: refreshed %d symbols, %d without data", refreshed, failed)
}

// RunOnce refreshes every listed symbol, at most Concurrency at a time.
// Failures are counted, never returned.
func (r *Refresher) RunOnce(ctx context.Context) (refreshed, failed int) {
	symbols := r.Symbols.Symbols(ctx)
	if len(symbols) == 0 {
		return 0, 0
	}

	var ok, ko atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			if r.Prices.Refresh(gctx, symbol) {
				ok.Add(1)
			} else {
				ko.Add(1)
				logger.Debugf("refresher: no fresh data for %s", symbol)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load()), int(ko.Load())
}
