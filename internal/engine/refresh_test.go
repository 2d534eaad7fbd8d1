package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
)

func TestRefresher_TicksAndStops(t *testing.T) {
	prices := newStubSource()
	prices.set("BTC", decimal.NewFromInt(45000))
	trader := newTestTrader(100000, prices)
	ctx := context.Background()

	if res := trader.ExecuteSignal(ctx, domain.Signal{
		Symbol: "BTC", Type: domain.SignalBuy, Confidence: 0.8,
	}); !res.Success {
		t.Fatalf("buy failed: %v", res.Reason)
	}

	before := prices.calls

	refresher := NewRefresher(trader, 20*time.Millisecond)
	refresher.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		prices.mu.Lock()
		calls := prices.calls
		prices.mu.Unlock()
		if calls > before {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	refresher.Stop()

	prices.mu.Lock()
	after := prices.calls
	prices.mu.Unlock()
	if after == before {
		t.Error("refresher never refreshed the open position")
	}

	// No more refreshes after Stop.
	time.Sleep(60 * time.Millisecond)
	prices.mu.Lock()
	final := prices.calls
	prices.mu.Unlock()
	if final != after {
		t.Errorf("refresher kept ticking after Stop: %d -> %d", after, final)
	}
}

func TestRefresher_StopWithoutStartIsSafe(t *testing.T) {
	refresher := NewRefresher(newTestTrader(1000, newStubSource()), time.Second)
	refresher.Stop()
}

func TestRefresher_DefaultInterval(t *testing.T) {
	refresher := NewRefresher(newTestTrader(1000, newStubSource()), 0)
	if refresher.interval != DefaultRefreshInterval {
		t.Errorf("interval = %v, want %v", refresher.interval, DefaultRefreshInterval)
	}
}
