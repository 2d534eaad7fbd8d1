package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"papertrader/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger owns the cash balance and the set of open positions. It is the only
// component allowed to mutate either. A single mutex serializes every
// mutating operation, so each open/close/refresh is an atomic
// check-then-act: on failure nothing has changed.
//
// Price lookups are I/O and must happen before calling into the Ledger;
// nothing here blocks on the network.
type Ledger struct {
	mu sync.Mutex

	cash         decimal.Decimal
	initial      decimal.Decimal
	maxPositions int
	positions    map[string]*domain.Position

	history *ValueHistory
}

// OpenParams carries the inputs for opening a position. StopLoss and
// TakeProfit are optional (zero = unset).
type OpenParams struct {
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Confidence float64
	SignalID   string
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// New creates a ledger with the given starting cash and position capacity.
// The value history is seeded with the initial balance.
func New(initialBalance decimal.Decimal, maxPositions int) *Ledger {
	l := &Ledger{
		cash:         initialBalance,
		initial:      initialBalance,
		maxPositions: maxPositions,
		positions:    make(map[string]*domain.Position),
		history:      NewValueHistory(DefaultMinSpacing, DefaultRetention),
	}
	l.history.Append(time.Now().UTC(), initialBalance)
	return l
}

// Canonical returns the canonical (case-insensitive) form of a symbol.
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// OpenPosition atomically opens a long position and debits its cost from
// cash. It fails with ErrDuplicatePosition, ErrCapacityExceeded or
// ErrInsufficientFunds, in that check order, with no partial effects.
// On success it returns a copy of the new position and the BUY trade record.
func (l *Ledger) OpenPosition(p OpenParams) (domain.Position, domain.Trade, error) {
	symbol := Canonical(p.Symbol)
	cost := p.Quantity.Mul(p.Price)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.positions[symbol]; ok {
		return domain.Position{}, domain.Trade{}, fmt.Errorf("%s: %w", symbol, domain.ErrDuplicatePosition)
	}
	if len(l.positions) >= l.maxPositions {
		return domain.Position{}, domain.Trade{}, fmt.Errorf("limit %d: %w", l.maxPositions, domain.ErrCapacityExceeded)
	}
	if cost.GreaterThan(l.cash) {
		return domain.Position{}, domain.Trade{}, fmt.Errorf("need %s, have %s: %w", cost, l.cash, domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	pos := &domain.Position{
		Symbol:           symbol,
		Quantity:         p.Quantity,
		EntryPrice:       p.Price,
		CurrentPrice:     p.Price,
		EntryTime:        now,
		Direction:        domain.Long,
		StopLoss:         p.StopLoss,
		TakeProfit:       p.TakeProfit,
		SignalConfidence: p.Confidence,
		SignalID:         p.SignalID,
	}

	l.cash = l.cash.Sub(cost)
	l.positions[symbol] = pos

	trade := domain.Trade{
		TradeID:          uuid.NewString(),
		Symbol:           symbol,
		Side:             domain.SideBuy,
		Quantity:         p.Quantity,
		Price:            p.Price,
		Timestamp:        now,
		SignalConfidence: p.Confidence,
		SignalID:         p.SignalID,
	}

	return *pos, trade, nil
}

// ClosePosition atomically closes the position for symbol at exitPrice,
// credits the proceeds to cash and returns the SELL trade with realized
// P&L and hold duration populated. Fails with ErrNoOpenPosition, leaving
// cash untouched.
func (l *Ledger) ClosePosition(symbol string, exitPrice decimal.Decimal, reason domain.ExitReason, signalID string) (domain.Trade, error) {
	symbol = Canonical(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Trade{}, fmt.Errorf("%s: %w", symbol, domain.ErrNoOpenPosition)
	}

	now := time.Now().UTC()
	cost := pos.Quantity.Mul(pos.EntryPrice)
	proceeds := pos.Quantity.Mul(exitPrice)
	realized := proceeds.Sub(cost)

	realizedPct := 0.0
	if !cost.IsZero() {
		realizedPct = realized.Div(cost).InexactFloat64() * 100
	}

	if signalID == "" {
		signalID = pos.SignalID
	}

	l.cash = l.cash.Add(proceeds)
	delete(l.positions, symbol)

	return domain.Trade{
		TradeID:          uuid.NewString(),
		Symbol:           symbol,
		Side:             domain.SideSell,
		Quantity:         pos.Quantity,
		Price:            exitPrice,
		Timestamp:        now,
		SignalConfidence: pos.SignalConfidence,
		SignalID:         signalID,
		RealizedPnL:      realized,
		RealizedPnLPct:   realizedPct,
		HoldDuration:     now.Sub(pos.EntryTime),
		ExitReason:       reason,
	}, nil
}

// RefreshPrice updates a position's current price and unrealized P&L in
// place. It is a no-op if no position is open for symbol; the returned bool
// says whether a position was updated.
func (l *Ledger) RefreshPrice(symbol string, price decimal.Decimal) (domain.Position, bool) {
	symbol = Canonical(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	pos.MarkPrice(price)
	return *pos, true
}

// PortfolioValue returns cash plus the market value of all open positions.
func (l *Ledger) PortfolioValue() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portfolioValueLocked()
}

func (l *Ledger) portfolioValueLocked() decimal.Decimal {
	total := l.cash
	for _, pos := range l.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// CashBalance returns the current cash balance.
func (l *Ledger) CashBalance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// InitialBalance returns the starting cash balance (constant).
func (l *Ledger) InitialBalance() decimal.Decimal {
	return l.initial
}

// Position returns a copy of the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (domain.Position, bool) {
	symbol = Canonical(symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// HasPosition reports whether a position is open for symbol.
func (l *Ledger) HasPosition(symbol string) bool {
	_, ok := l.Position(symbol)
	return ok
}

// OpenPositions returns copies of all open positions.
func (l *Ledger) OpenPositions() []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	return out
}

// Snapshot captures a consistent read-only view for metric computation.
type Snapshot struct {
	Cash           decimal.Decimal
	InitialBalance decimal.Decimal
	PortfolioValue decimal.Decimal
	Positions      []domain.Position
}

// Snapshot returns a consistent copy of the ledger state under one short
// critical section. Metric computation runs on the copy, off the lock.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make([]domain.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		positions = append(positions, *pos)
	}
	return Snapshot{
		Cash:           l.cash,
		InitialBalance: l.initial,
		PortfolioValue: l.portfolioValueLocked(),
		Positions:      positions,
	}
}

// RecordValue appends the current portfolio value to the value history,
// subject to the history's spacing and retention rules.
func (l *Ledger) RecordValue(now time.Time) {
	l.mu.Lock()
	value := l.portfolioValueLocked()
	l.mu.Unlock()

	l.history.Append(now, value)
}

// History returns the bounded portfolio value history.
func (l *Ledger) History() *ValueHistory {
	return l.history
}

// Restore replaces cash and open positions from persisted state. Intended
// for process restart only, before any trading starts.
func (l *Ledger) Restore(cash decimal.Decimal, positions []domain.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = cash
	l.positions = make(map[string]*domain.Position, len(positions))
	for i := range positions {
		pos := positions[i]
		l.positions[Canonical(pos.Symbol)] = &pos
	}
}
