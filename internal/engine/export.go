package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"papertrader/internal/domain"
	"papertrader/internal/ledger"
)

// PositionSummary is a read-side view of one open position.
type PositionSummary struct {
	Symbol           string          `json:"symbol"`
	Quantity         decimal.Decimal `json:"quantity"`
	EntryPrice       decimal.Decimal `json:"entry_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	MarketValue      decimal.Decimal `json:"market_value"`
	UnrealizedPnL    decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPct float64         `json:"unrealized_pnl_pct"`
	StopLoss         decimal.Decimal `json:"stop_loss"`
	TakeProfit       decimal.Decimal `json:"take_profit"`
	HoldTimeHours    float64         `json:"hold_time_hours"`
}

// PositionSummaries returns a summary of every open position.
func (t *Trader) PositionSummaries() []PositionSummary {
	positions := t.ledger.OpenPositions()
	now := time.Now().UTC()

	out := make([]PositionSummary, 0, len(positions))
	for _, pos := range positions {
		out = append(out, PositionSummary{
			Symbol:           pos.Symbol,
			Quantity:         pos.Quantity,
			EntryPrice:       pos.EntryPrice,
			CurrentPrice:     pos.CurrentPrice,
			MarketValue:      pos.MarketValue(),
			UnrealizedPnL:    pos.UnrealizedPnL,
			UnrealizedPnLPct: pos.UnrealizedPnLPct,
			StopLoss:         pos.StopLoss,
			TakeProfit:       pos.TakeProfit,
			HoldTimeHours:    now.Sub(pos.EntryTime).Hours(),
		})
	}
	return out
}

// RecentTrades returns the most recent n trades, newest first.
func (t *Trader) RecentTrades(n int) []domain.Trade {
	return t.log.Recent(n)
}

// PerformanceExport is a one-shot JSON-able dump of the full portfolio
// state for external analysis.
type PerformanceExport struct {
	GeneratedAt  time.Time               `json:"generated_at"`
	Metrics      domain.PortfolioMetrics `json:"metrics"`
	Positions    []PositionSummary       `json:"positions"`
	RecentTrades []domain.Trade          `json:"recent_trades"`
	ValueHistory []ledger.ValuePoint     `json:"value_history"`
	Settings     ExportSettings          `json:"settings"`
}

// ExportSettings records the policy knobs in effect at export time.
type ExportSettings struct {
	InitialBalance            decimal.Decimal `json:"initial_balance"`
	MinConfidence             float64         `json:"min_confidence"`
	MaxRiskPerTrade           float64         `json:"max_risk_per_trade"`
	StopLossPct               float64         `json:"stop_loss_pct"`
	TakeProfitConfidenceScale float64         `json:"take_profit_confidence_scale"`
}

// ExportPerformance refreshes prices and exports metrics, open positions,
// recent trades and the value history in one consistent report.
func (t *Trader) ExportPerformance(ctx context.Context) PerformanceExport {
	m := t.Metrics(ctx)

	return PerformanceExport{
		GeneratedAt:  time.Now().UTC(),
		Metrics:      m,
		Positions:    t.PositionSummaries(),
		RecentTrades: t.log.Recent(20),
		ValueHistory: t.ledger.History().Points(),
		Settings: ExportSettings{
			InitialBalance:            t.ledger.InitialBalance(),
			MinConfidence:             t.cfg.MinConfidence,
			MaxRiskPerTrade:           t.sizer.MaxRiskPerTrade,
			StopLossPct:               t.cfg.StopLossPct,
			TakeProfitConfidenceScale: t.cfg.TakeProfitConfidenceScale,
		},
	}
}
