package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a position. Only long positions are opened in the
// current engine; Short is reserved.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Position represents an open simulated holding in one symbol.
// Money and quantity values are decimal; a zero StopLoss/TakeProfit means
// the level is not set.
//
// Positions are owned and mutated exclusively by the Ledger. Everything
// handed out of the Ledger is a copy.
type Position struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	EntryTime    time.Time       `json:"entry_time"`
	Direction    Direction       `json:"direction"`
	StopLoss     decimal.Decimal `json:"stop_loss"`
	TakeProfit   decimal.Decimal `json:"take_profit"`

	// Signal provenance
	SignalConfidence float64 `json:"signal_confidence"`
	SignalID         string  `json:"signal_id"`

	// Derived, recomputed on every price refresh.
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPct float64         `json:"unrealized_pnl_pct"`
}

// MarkPrice updates CurrentPrice and recomputes the unrealized P&L fields.
func (p *Position) MarkPrice(price decimal.Decimal) {
	p.CurrentPrice = price
	cost := p.Quantity.Mul(p.EntryPrice)
	p.UnrealizedPnL = p.Quantity.Mul(price).Sub(cost)
	if cost.IsZero() {
		p.UnrealizedPnLPct = 0
		return
	}
	p.UnrealizedPnLPct = p.UnrealizedPnL.Div(cost).InexactFloat64() * 100
}

// MarketValue returns quantity * current price.
func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}

// CostBasis returns quantity * entry price.
func (p *Position) CostBasis() decimal.Decimal {
	return p.Quantity.Mul(p.EntryPrice)
}

// HasStopLoss reports whether a stop-loss level is set.
func (p *Position) HasStopLoss() bool { return !p.StopLoss.IsZero() }

// HasTakeProfit reports whether a take-profit level is set.
func (p *Position) HasTakeProfit() bool { return !p.TakeProfit.IsZero() }
