package ledger

import (
	"context"
	"log/slog"
	"sync"

	"papertrader/internal/domain"
)

// TradeSink persists trades as they are appended. The sqlite store
// implements this; a nil sink keeps the log in memory only.
type TradeSink interface {
	SaveTrade(ctx context.Context, trade domain.Trade) error
}

// TradeLog is the append-only history of executed trades and the source of
// all realized-P&L statistics. Entries are never mutated or deleted.
type TradeLog struct {
	mu     sync.RWMutex
	trades []domain.Trade
	sink   TradeSink
}

// NewTradeLog creates a trade log. sink may be nil.
func NewTradeLog(sink TradeSink) *TradeLog {
	return &TradeLog{sink: sink}
}

// Append records a trade. A persistence failure is logged and does not fail
// the execution: the in-memory log is the source of truth for a simulation.
func (t *TradeLog) Append(ctx context.Context, trade domain.Trade) {
	t.mu.Lock()
	t.trades = append(t.trades, trade)
	t.mu.Unlock()

	if t.sink == nil {
		return
	}
	if err := t.sink.SaveTrade(ctx, trade); err != nil {
		slog.Warn("failed to persist trade",
			slog.String("trade_id", trade.TradeID),
			slog.Any("error", err))
	}
}

// Load seeds the in-memory log from persisted trades. Restart only.
func (t *TradeLog) Load(trades []domain.Trade) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trades = append([]domain.Trade(nil), trades...)
}

// All returns a copy of the full history in append order.
func (t *TradeLog) All() []domain.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Trade, len(t.trades))
	copy(out, t.trades)
	return out
}

// Recent returns the most recent n trades, newest first.
func (t *TradeLog) Recent(n int) []domain.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.trades) {
		n = len(t.trades)
	}
	out := make([]domain.Trade, 0, n)
	for i := len(t.trades) - 1; i >= len(t.trades)-n; i-- {
		out = append(out, t.trades[i])
	}
	return out
}

// Len returns the number of recorded trades.
func (t *TradeLog) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trades)
}
