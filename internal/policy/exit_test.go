package policy

import (
	"testing"

	"papertrader/internal/domain"
)

func TestCheckExit(t *testing.T) {
	pos := domain.Position{
		Symbol:     "BTC",
		EntryPrice: d("45000"),
		StopLoss:   d("42000"),
		TakeProfit: d("48000"),
	}

	tests := []struct {
		name  string
		price string
		want  ExitDecision
	}{
		{"InsideBand", "45000", ExitNone},
		{"BelowStop", "41000", ExitStopLoss},
		{"AtStop", "42000", ExitStopLoss},
		{"AboveTarget", "49000", ExitTakeProfit},
		{"AtTarget", "48000", ExitTakeProfit},
		{"JustAboveStop", "42000.01", ExitNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckExit(pos, d(tt.price)); got != tt.want {
				t.Errorf("CheckExit(%s) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestCheckExit_UnsetLevels(t *testing.T) {
	pos := domain.Position{Symbol: "ETH", EntryPrice: d("3000")}

	for _, price := range []string{"1", "3000", "1000000"} {
		if got := CheckExit(pos, d(price)); got != ExitNone {
			t.Errorf("no levels set: CheckExit(%s) = %v, want ExitNone", price, got)
		}
	}
}

// Degenerate configuration where both levels would trigger: the defined
// tie-break is stop-loss first.
func TestCheckExit_StopLossWinsTieBreak(t *testing.T) {
	pos := domain.Position{
		Symbol:     "BTC",
		StopLoss:   d("50000"),
		TakeProfit: d("40000"),
	}
	if got := CheckExit(pos, d("45000")); got != ExitStopLoss {
		t.Errorf("tie-break = %v, want ExitStopLoss", got)
	}
}

func TestExitDecision_Reason(t *testing.T) {
	if ExitStopLoss.Reason() != domain.ExitStopLoss {
		t.Error("stop-loss decision should map to STOP_LOSS")
	}
	if ExitTakeProfit.Reason() != domain.ExitTakeProfit {
		t.Error("take-profit decision should map to TAKE_PROFIT")
	}
}
