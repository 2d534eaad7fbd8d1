package policy

import (
	"papertrader/internal/domain"

	"github.com/shopspring/decimal"
)

// ExitDecision is the outcome of an exit check.
type ExitDecision int

const (
	ExitNone ExitDecision = iota
	ExitStopLoss
	ExitTakeProfit
)

func (d ExitDecision) String() string {
	switch d {
	case ExitStopLoss:
		return "STOP_LOSS"
	case ExitTakeProfit:
		return "TAKE_PROFIT"
	default:
		return "NONE"
	}
}

// Reason maps a triggered decision to the trade exit reason.
func (d ExitDecision) Reason() domain.ExitReason {
	switch d {
	case ExitStopLoss:
		return domain.ExitStopLoss
	case ExitTakeProfit:
		return domain.ExitTakeProfit
	default:
		return domain.ExitManual
	}
}

// CheckExit evaluates a position against the current price and decides
// whether it must be force-closed. Stop-loss triggers when the price is at
// or below the stop level; take-profit when at or above the target.
//
// Stop-loss is evaluated first: for degenerate configurations where both
// levels would trigger, the tie-break is defined as stop-loss. Exactly one
// decision is issued per check; the actual close is the Ledger's job.
func CheckExit(pos domain.Position, price decimal.Decimal) ExitDecision {
	if pos.HasStopLoss() && price.LessThanOrEqual(pos.StopLoss) {
		return ExitStopLoss
	}
	if pos.HasTakeProfit() && price.GreaterThanOrEqual(pos.TakeProfit) {
		return ExitTakeProfit
	}
	return ExitNone
}
