package domain

import "github.com/shopspring/decimal"

// SignalType classifies an inbound trading signal.
type SignalType string

const (
	SignalBuy        SignalType = "BUY"
	SignalStrongBuy  SignalType = "STRONG_BUY"
	SignalSell       SignalType = "SELL"
	SignalStrongSell SignalType = "STRONG_SELL"
)

// IsBuy reports whether the signal type opens a position.
func (s SignalType) IsBuy() bool {
	return s == SignalBuy || s == SignalStrongBuy
}

// IsSell reports whether the signal type closes a position.
func (s SignalType) IsSell() bool {
	return s == SignalSell || s == SignalStrongSell
}

// Supported reports whether the signal type can be executed at all.
// Unsupported types must be rejected explicitly, never silently ignored.
func (s SignalType) Supported() bool {
	return s.IsBuy() || s.IsSell()
}

// Signal is the inbound execution request produced by an external signal
// source. CurrentPrice, TargetPrice and StopLoss are optional hints; a zero
// value means "not provided".
type Signal struct {
	Symbol     string     `json:"symbol"`
	Type       SignalType `json:"signal_type"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	SignalID   string     `json:"signal_id,omitempty"`

	CurrentPrice decimal.Decimal `json:"current_price,omitempty"`
	TargetPrice  decimal.Decimal `json:"target_price,omitempty"`
	StopLoss     decimal.Decimal `json:"stop_loss,omitempty"`
}

// ExecutionResult is returned to callers for every signal execution attempt.
// Reason is populated only when Success is false, and carries one of the
// sentinel errors from errors.go (wrapped). The core never produces
// user-facing text; translating Reason is the API layer's job.
type ExecutionResult struct {
	Success          bool             `json:"success"`
	Trade            *Trade           `json:"trade,omitempty"`
	Position         *Position        `json:"position,omitempty"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`
	Reason           error            `json:"-"`
}
