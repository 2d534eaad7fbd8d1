package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitManual     ExitReason = "MANUAL"
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitSignal     ExitReason = "SIGNAL"
)

// Trade is an immutable record of one executed side. It is created once at
// execution time, appended to the trade log and never mutated.
//
// The realized fields and ExitReason are populated if and only if
// Side == SideSell.
type Trade struct {
	TradeID   string          `json:"trade_id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`

	SignalConfidence float64 `json:"signal_confidence"`
	SignalID         string  `json:"signal_id"`

	// SELL only.
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	RealizedPnLPct float64         `json:"realized_pnl_pct"`
	HoldDuration   time.Duration   `json:"hold_duration"`
	ExitReason     ExitReason      `json:"exit_reason,omitempty"`
}

// IsWin reports whether a sell trade realized a profit.
func (t *Trade) IsWin() bool {
	return t.Side == SideSell && t.RealizedPnL.IsPositive()
}
