package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval is the tick period for the background refresh.
const DefaultRefreshInterval = 30 * time.Second

// Refresher periodically refreshes open positions and applies exit policy.
// Cancellable: Stop (or the parent context) halts the loop between symbol
// units, never in the middle of one.
type Refresher struct {
	trader   *Trader
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRefresher creates a refresher. Non-positive interval falls back to
// DefaultRefreshInterval.
func NewRefresher(trader *Trader, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{trader: trader, interval: interval}
}

// Start launches the refresh loop.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("refresh loop panic recovered", slog.Any("panic", rec))
			}
		}()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("refresh loop stopped")
				return
			case <-ticker.C:
				r.trader.RefreshAll(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.wg.Wait()
	}
}
