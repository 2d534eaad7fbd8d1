package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioMetrics is a pure derived snapshot of portfolio performance.
// It is never stored; it is recomputed from the ledger, the trade log and
// the value history on every request.
//
// Money amounts are decimal; percentages and ratios are float64.
type PortfolioMetrics struct {
	TotalValue     decimal.Decimal `json:"total_value"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	PositionsValue decimal.Decimal `json:"positions_value"`
	InitialBalance decimal.Decimal `json:"initial_balance"`

	TotalReturn    decimal.Decimal `json:"total_return"`
	TotalReturnPct float64         `json:"total_return_pct"`
	DailyReturnPct float64         `json:"daily_return_pct"`

	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`

	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	SharpeRatio  float64 `json:"sharpe_ratio"`

	MaxDrawdown    decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownPct float64         `json:"max_drawdown_pct"`

	AvgWin      decimal.Decimal `json:"avg_win"`
	AvgLoss     decimal.Decimal `json:"avg_loss"`
	LargestWin  decimal.Decimal `json:"largest_win"`
	LargestLoss decimal.Decimal `json:"largest_loss"`

	TotalTrades   int `json:"total_trades"`
	WinningTrades int `json:"winning_trades"`
	LosingTrades  int `json:"losing_trades"`

	AvgHoldTimeHours float64   `json:"avg_hold_time"`
	LastUpdated      time.Time `json:"last_updated"`
}
