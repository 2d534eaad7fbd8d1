// Package engine drives signal execution and the periodic refresh loop.
// It owns no state of its own: all portfolio state lives in the ledger,
// all history in the trade log.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
	"papertrader/internal/event"
	"papertrader/internal/ledger"
	"papertrader/internal/metrics"
	"papertrader/internal/policy"
	"papertrader/internal/pricing"
)

// Exit level defaults, applied when a signal carries no explicit levels.
// Heuristics, not business rules; both are configurable.
const (
	DefaultMinConfidence             = 0.6
	DefaultStopLossPct               = 0.05
	DefaultTakeProfitConfidenceScale = 0.2
)

// Config tunes the trader's execution policy.
type Config struct {
	MinConfidence             float64
	StopLossPct               float64
	TakeProfitConfidenceScale float64
}

func (c *Config) applyDefaults() {
	if c.MinConfidence <= 0 {
		c.MinConfidence = DefaultMinConfidence
	}
	if c.StopLossPct <= 0 {
		c.StopLossPct = DefaultStopLossPct
	}
	if c.TakeProfitConfidenceScale <= 0 {
		c.TakeProfitConfidenceScale = DefaultTakeProfitConfidenceScale
	}
}

// Trader converts signals into ledger operations and runs the refresh pass.
// Price lookups happen before any ledger call so network I/O never holds
// the ledger lock.
type Trader struct {
	ledger  *ledger.Ledger
	log     *ledger.TradeLog
	sizer   policy.Sizer
	prices  pricing.Source
	bus     *event.Bus
	metrics *metrics.Engine
	cfg     Config
}

// NewTrader wires the trading core together. bus may be nil when no
// subscriber cares about notifications.
func NewTrader(led *ledger.Ledger, log *ledger.TradeLog, sizer policy.Sizer, prices pricing.Source, bus *event.Bus, cfg Config) *Trader {
	cfg.applyDefaults()
	if bus == nil {
		bus = event.NewBus()
	}
	return &Trader{
		ledger:  led,
		log:     log,
		sizer:   sizer,
		prices:  prices,
		bus:     bus,
		metrics: metrics.New(),
		cfg:     cfg,
	}
}

func failure(err error) domain.ExecutionResult {
	return domain.ExecutionResult{Reason: err}
}

// Bus exposes the notification bus for subscribers.
func (t *Trader) Bus() *event.Bus { return t.bus }

// Ledger exposes the underlying ledger for read-side callers.
func (t *Trader) Ledger() *ledger.Ledger { return t.ledger }

// ExecuteSignal runs one signal through the execution state machine.
// Failures are reported in the result's Reason, never as a panic; every
// failure leaves the ledger untouched.
func (t *Trader) ExecuteSignal(ctx context.Context, sig domain.Signal) domain.ExecutionResult {
	if !sig.Type.Supported() {
		return failure(fmt.Errorf("%q: %w", sig.Type, domain.ErrUnsupportedSignalType))
	}

	if sig.Type.IsBuy() {
		return t.executeBuy(ctx, sig)
	}
	return t.executeSell(ctx, sig)
}

func (t *Trader) executeBuy(ctx context.Context, sig domain.Signal) domain.ExecutionResult {
	symbol := ledger.Canonical(sig.Symbol)

	if sig.Confidence < t.cfg.MinConfidence {
		return failure(fmt.Errorf("confidence %.2f below %.2f: %w",
			sig.Confidence, t.cfg.MinConfidence, domain.ErrLowConfidence))
	}
	if t.ledger.HasPosition(symbol) {
		return failure(fmt.Errorf("%s: %w", symbol, domain.ErrDuplicatePosition))
	}

	price, err := t.resolvePrice(ctx, symbol, sig.CurrentPrice)
	if err != nil {
		return failure(err)
	}

	qty := t.sizer.Size(sig.Confidence, price, t.ledger.PortfolioValue(), t.ledger.CashBalance())
	if qty.IsZero() {
		return failure(fmt.Errorf("%s at %s: %w", symbol, price, domain.ErrSizeTooSmall))
	}

	stopLoss := sig.StopLoss
	if !stopLoss.IsPositive() {
		stopLoss = price.Mul(decimal.NewFromFloat(1 - t.cfg.StopLossPct))
	}
	takeProfit := sig.TargetPrice
	if !takeProfit.IsPositive() {
		takeProfit = price.Mul(decimal.NewFromFloat(1 + sig.Confidence*t.cfg.TakeProfitConfidenceScale))
	}

	pos, trade, err := t.ledger.OpenPosition(ledger.OpenParams{
		Symbol:     symbol,
		Quantity:   qty,
		Price:      price,
		Confidence: sig.Confidence,
		SignalID:   sig.SignalID,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	})
	if err != nil {
		return failure(err)
	}

	t.log.Append(ctx, trade)
	t.bus.Publish(event.PositionOpened{
		BaseEvent: event.BaseEvent{Ts: trade.Timestamp},
		Position:  pos,
		Trade:     trade,
	})

	slog.Info("position opened",
		slog.String("symbol", symbol),
		slog.String("qty", qty.String()),
		slog.String("price", price.String()),
		slog.Float64("confidence", sig.Confidence))

	balance := t.ledger.CashBalance()
	return domain.ExecutionResult{
		Success:          true,
		Trade:            &trade,
		Position:         &pos,
		RemainingBalance: &balance,
	}
}

func (t *Trader) executeSell(ctx context.Context, sig domain.Signal) domain.ExecutionResult {
	symbol := ledger.Canonical(sig.Symbol)

	if !t.ledger.HasPosition(symbol) {
		return failure(fmt.Errorf("%s: %w", symbol, domain.ErrNoOpenPosition))
	}

	price, err := t.resolvePrice(ctx, symbol, sig.CurrentPrice)
	if err != nil {
		return failure(err)
	}

	trade, err := t.ledger.ClosePosition(symbol, price, domain.ExitSignal, sig.SignalID)
	if err != nil {
		return failure(err)
	}

	t.log.Append(ctx, trade)
	t.bus.Publish(event.PositionClosed{
		BaseEvent: event.BaseEvent{Ts: trade.Timestamp},
		Trade:     trade,
	})

	slog.Info("position closed",
		slog.String("symbol", symbol),
		slog.String("price", price.String()),
		slog.String("realized_pnl", trade.RealizedPnL.String()),
		slog.String("reason", string(trade.ExitReason)))

	balance := t.ledger.CashBalance()
	return domain.ExecutionResult{
		Success:          true,
		Trade:            &trade,
		RemainingBalance: &balance,
	}
}

// resolvePrice prefers the signal's price hint; otherwise it asks the price
// source. Runs before any ledger lock is taken.
func (t *Trader) resolvePrice(ctx context.Context, symbol string, hint decimal.Decimal) (decimal.Decimal, error) {
	if hint.IsPositive() {
		return hint, nil
	}
	return t.prices.Price(ctx, symbol)
}

// ClosePosition manually closes one position at the current market price.
func (t *Trader) ClosePosition(ctx context.Context, symbol string, reason domain.ExitReason) (domain.Trade, error) {
	symbol = ledger.Canonical(symbol)

	pos, ok := t.ledger.Position(symbol)
	if !ok {
		return domain.Trade{}, fmt.Errorf("%s: %w", symbol, domain.ErrNoOpenPosition)
	}

	price, err := t.prices.Price(ctx, symbol)
	if err != nil {
		// Fall back to the last marked price so a dead feed cannot leave
		// positions permanently stuck open.
		slog.Warn("close falling back to last marked price",
			slog.String("symbol", symbol),
			slog.Any("error", err))
		price = pos.CurrentPrice
	}

	trade, err := t.ledger.ClosePosition(symbol, price, reason, "")
	if err != nil {
		return domain.Trade{}, err
	}

	t.log.Append(ctx, trade)
	t.bus.Publish(event.PositionClosed{
		BaseEvent: event.BaseEvent{Ts: trade.Timestamp},
		Trade:     trade,
	})
	return trade, nil
}

// CloseAll closes every open position. It returns the trades that were
// executed; per-symbol failures are logged and skipped.
func (t *Trader) CloseAll(ctx context.Context, reason domain.ExitReason) []domain.Trade {
	var trades []domain.Trade
	for _, pos := range t.ledger.OpenPositions() {
		trade, err := t.ClosePosition(ctx, pos.Symbol, reason)
		if err != nil {
			slog.Warn("close all: skipping symbol",
				slog.String("symbol", pos.Symbol),
				slog.Any("error", err))
			continue
		}
		trades = append(trades, trade)
	}
	return trades
}

// RefreshAll refreshes every open position's price and applies exit policy.
// Each symbol is its own atomic unit: a failure or cancellation mid-pass
// never leaves a position half-updated. The portfolio value is recorded
// after the pass.
func (t *Trader) RefreshAll(ctx context.Context) {
	for _, pos := range t.ledger.OpenPositions() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := t.refreshSymbol(ctx, pos.Symbol); err != nil {
			slog.Warn("refresh skipped",
				slog.String("symbol", pos.Symbol),
				slog.Any("error", err))
		}
	}

	t.ledger.RecordValue(time.Now().UTC())
}

func (t *Trader) refreshSymbol(ctx context.Context, symbol string) error {
	price, err := t.prices.Price(ctx, symbol)
	if err != nil {
		return err
	}

	pos, ok := t.ledger.RefreshPrice(symbol, price)
	if !ok {
		return nil // closed concurrently
	}

	decision := policy.CheckExit(pos, price)
	if decision == policy.ExitNone {
		return nil
	}

	t.bus.Publish(event.ExitTriggered{
		BaseEvent: event.BaseEvent{Ts: time.Now().UTC()},
		Symbol:    pos.Symbol,
		Reason:    decision.Reason(),
		Price:     price,
	})

	trade, err := t.ledger.ClosePosition(symbol, price, decision.Reason(), "")
	if err != nil {
		return err
	}

	t.log.Append(ctx, trade)
	t.bus.Publish(event.PositionClosed{
		BaseEvent: event.BaseEvent{Ts: trade.Timestamp},
		Trade:     trade,
	})

	slog.Info("exit triggered",
		slog.String("symbol", symbol),
		slog.String("reason", string(trade.ExitReason)),
		slog.String("price", price.String()),
		slog.String("realized_pnl", trade.RealizedPnL.String()))
	return nil
}

// Metrics refreshes all open positions and then computes the full
// portfolio metrics snapshot.
func (t *Trader) Metrics(ctx context.Context) domain.PortfolioMetrics {
	t.RefreshAll(ctx)
	return t.metrics.Compute(t.ledger.Snapshot(), t.log.All(), t.ledger.History().Points())
}
