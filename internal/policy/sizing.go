package policy

import (
	"github.com/shopspring/decimal"
)

// Sizing defaults. All of these are configurable; see infra.Config.
const (
	DefaultBaseRiskPct     = 0.01 // 1% of portfolio at base confidence
	DefaultMaxRiskPerTrade = 0.03 // hard ceiling per trade
	DefaultCashBufferPct   = 0.10 // fraction of cash never deployed
)

// Sizer maps signal confidence and portfolio state to a position size.
// It is a pure function object: no side effects, no I/O.
type Sizer struct {
	BaseRiskPct     float64
	MaxRiskPerTrade float64
	CashBufferPct   float64
}

// NewSizer creates a sizer with the given risk ceiling, using defaults for
// the base risk and cash buffer. Non-positive maxRiskPerTrade falls back to
// the default.
func NewSizer(maxRiskPerTrade float64) Sizer {
	if maxRiskPerTrade <= 0 {
		maxRiskPerTrade = DefaultMaxRiskPerTrade
	}
	return Sizer{
		BaseRiskPct:     DefaultBaseRiskPct,
		MaxRiskPerTrade: maxRiskPerTrade,
		CashBufferPct:   DefaultCashBufferPct,
	}
}

// Size computes the quantity to buy for a signal.
//
// Risk scales linearly with confidence: riskPct = baseRisk * (1 + 2c),
// capped at MaxRiskPerTrade. The risk amount is portfolioValue * riskPct,
// further capped at (1 - CashBufferPct) of available cash. The returned
// quantity is riskAmount / price.
//
// A zero return means "do not trade"; callers must not treat it as an
// error. Zero is returned for non-positive price or when no cash can be
// deployed.
func (s Sizer) Size(confidence float64, price, portfolioValue, availableCash decimal.Decimal) decimal.Decimal {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	riskPct := s.BaseRiskPct * (1 + 2*confidence)
	if riskPct > s.MaxRiskPerTrade {
		riskPct = s.MaxRiskPerTrade
	}

	riskAmount := portfolioValue.Mul(decimal.NewFromFloat(riskPct))

	deployable := availableCash.Mul(decimal.NewFromFloat(1 - s.CashBufferPct))
	if riskAmount.GreaterThan(deployable) {
		riskAmount = deployable
	}
	if riskAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return riskAmount.Div(price)
}
