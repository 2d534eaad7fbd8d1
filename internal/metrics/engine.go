package metrics

import (
	"time"

	"papertrader/internal/domain"
	"papertrader/internal/ledger"
	"papertrader/pkg/stats"

	"github.com/shopspring/decimal"
)

const (
	// sharpeWindow is how many of the most recent value points feed the
	// Sharpe computation.
	sharpeWindow = 30
	// periodsPerYear annualizes Sharpe assuming roughly daily sampling.
	periodsPerYear = 365
)

// Engine derives PortfolioMetrics from a ledger snapshot, the trade log and
// the portfolio value history. It holds no state of its own: every call is
// a pure recomputation over the inputs.
type Engine struct{}

// New creates a metrics engine.
func New() *Engine {
	return &Engine{}
}

// Compute builds a full metrics snapshot. All inputs are copies, so this
// can run concurrently with ledger mutation.
func (e *Engine) Compute(snap ledger.Snapshot, trades []domain.Trade, history []ledger.ValuePoint) domain.PortfolioMetrics {
	m := domain.PortfolioMetrics{
		TotalValue:     snap.PortfolioValue,
		CashBalance:    snap.Cash,
		InitialBalance: snap.InitialBalance,
		PositionsValue: snap.PortfolioValue.Sub(snap.Cash),
		LastUpdated:    time.Now().UTC(),
	}

	m.TotalReturn = snap.PortfolioValue.Sub(snap.InitialBalance)
	if !snap.InitialBalance.IsZero() {
		m.TotalReturnPct = m.TotalReturn.Div(snap.InitialBalance).InexactFloat64() * 100
	}

	m.UnrealizedPnL = decimal.Zero
	for _, pos := range snap.Positions {
		m.UnrealizedPnL = m.UnrealizedPnL.Add(pos.UnrealizedPnL)
	}

	e.applyTradeStats(&m, trades)
	m.TotalPnL = m.UnrealizedPnL.Add(m.RealizedPnL)

	m.MaxDrawdown, m.MaxDrawdownPct = MaxDrawdown(history)
	m.SharpeRatio = sharpeRatio(history)
	m.DailyReturnPct = dailyReturnPct(history)

	return m
}

// applyTradeStats fills the realized-P&L statistics from completed (SELL)
// trades. With no sell trades all rates are 0 by definition, not an error.
func (e *Engine) applyTradeStats(m *domain.PortfolioMetrics, trades []domain.Trade) {
	m.RealizedPnL = decimal.Zero

	var (
		wins, losses   decimal.Decimal
		holdHoursTotal float64
		holdCount      int
	)

	for _, t := range trades {
		if t.Side != domain.SideSell {
			continue
		}
		m.TotalTrades++
		m.RealizedPnL = m.RealizedPnL.Add(t.RealizedPnL)

		if t.RealizedPnL.IsPositive() {
			m.WinningTrades++
			wins = wins.Add(t.RealizedPnL)
			if t.RealizedPnL.GreaterThan(m.LargestWin) {
				m.LargestWin = t.RealizedPnL
			}
		} else {
			m.LosingTrades++
			loss := t.RealizedPnL.Abs()
			losses = losses.Add(loss)
			if loss.GreaterThan(m.LargestLoss) {
				m.LargestLoss = loss
			}
		}

		if t.HoldDuration > 0 {
			holdHoursTotal += t.HoldDuration.Hours()
			holdCount++
		}
	}

	if m.TotalTrades == 0 {
		return
	}

	m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100

	// Denominator floored at 1 so a loss-free history yields a finite
	// profit factor.
	denom := losses
	if denom.LessThan(decimal.NewFromInt(1)) {
		denom = decimal.NewFromInt(1)
	}
	m.ProfitFactor = wins.Div(denom).InexactFloat64()

	if m.WinningTrades > 0 {
		m.AvgWin = wins.Div(decimal.NewFromInt(int64(m.WinningTrades)))
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = losses.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}
	if holdCount > 0 {
		m.AvgHoldTimeHours = holdHoursTotal / float64(holdCount)
	}
}

// MaxDrawdown scans the value history once, in chronological order,
// tracking the running peak. It returns the largest absolute peak-to-trough
// decline and that decline as a percentage of its peak.
func MaxDrawdown(history []ledger.ValuePoint) (decimal.Decimal, float64) {
	if len(history) < 2 {
		return decimal.Zero, 0
	}

	peak := history[0].Value
	maxDD := decimal.Zero
	maxDDPct := 0.0

	for _, p := range history[1:] {
		if p.Value.GreaterThan(peak) {
			peak = p.Value
		}
		dd := peak.Sub(p.Value)
		if dd.GreaterThan(maxDD) {
			maxDD = dd
			if !peak.IsZero() {
				maxDDPct = dd.Div(peak).InexactFloat64() * 100
			}
		}
	}
	return maxDD, maxDDPct
}

// sharpeRatio computes the annualized Sharpe ratio over simple returns of
// the most recent value points. Defined as 0 with fewer than 2 points or
// zero variance.
func sharpeRatio(history []ledger.ValuePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	start := 0
	if len(history) > sharpeWindow {
		start = len(history) - sharpeWindow
	}

	values := make([]float64, 0, len(history)-start)
	for _, p := range history[start:] {
		values = append(values, p.Value.InexactFloat64())
	}
	return stats.Sharpe(values, periodsPerYear)
}

// dailyReturnPct is the percentage change between the two most recent value
// points; 0 with fewer than 2 points.
func dailyReturnPct(history []ledger.ValuePoint) float64 {
	n := len(history)
	if n < 2 {
		return 0
	}
	prev := history[n-2].Value
	if prev.IsZero() {
		return 0
	}
	return history[n-1].Value.Sub(prev).Div(prev).InexactFloat64() * 100
}
