package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPosition_MarkPrice(t *testing.T) {
	tests := []struct {
		name    string
		qty     string
		entry   string
		price   string
		wantPnL string
		wantPct float64
	}{
		{"Gain", "1", "45000", "48000", "3000", 6.6666666667},
		{"Loss", "2", "100", "90", "-20", -10},
		{"Flat", "0.5", "200", "200", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Position{Symbol: "BTC", Quantity: d(tt.qty), EntryPrice: d(tt.entry)}
			p.MarkPrice(d(tt.price))

			if !p.CurrentPrice.Equal(d(tt.price)) {
				t.Errorf("CurrentPrice = %s, want %s", p.CurrentPrice, tt.price)
			}
			if !p.UnrealizedPnL.Equal(d(tt.wantPnL)) {
				t.Errorf("UnrealizedPnL = %s, want %s", p.UnrealizedPnL, tt.wantPnL)
			}
			if math.Abs(p.UnrealizedPnLPct-tt.wantPct) > 1e-6 {
				t.Errorf("UnrealizedPnLPct = %v, want %v", p.UnrealizedPnLPct, tt.wantPct)
			}
		})
	}
}

func TestPosition_Levels(t *testing.T) {
	p := &Position{Symbol: "ETH"}
	if p.HasStopLoss() || p.HasTakeProfit() {
		t.Error("zero levels must read as unset")
	}

	p.StopLoss = d("42000")
	p.TakeProfit = d("48000")
	if !p.HasStopLoss() || !p.HasTakeProfit() {
		t.Error("non-zero levels must read as set")
	}
}

func TestSignalType_Supported(t *testing.T) {
	tests := []struct {
		st   SignalType
		buy  bool
		sell bool
	}{
		{SignalBuy, true, false},
		{SignalStrongBuy, true, false},
		{SignalSell, false, true},
		{SignalStrongSell, false, true},
		{SignalType("HOLD"), false, false},
		{SignalType(""), false, false},
	}
	for _, tt := range tests {
		if got := tt.st.IsBuy(); got != tt.buy {
			t.Errorf("%s.IsBuy() = %v, want %v", tt.st, got, tt.buy)
		}
		if got := tt.st.IsSell(); got != tt.sell {
			t.Errorf("%s.IsSell() = %v, want %v", tt.st, got, tt.sell)
		}
		if got := tt.st.Supported(); got != (tt.buy || tt.sell) {
			t.Errorf("%s.Supported() = %v", tt.st, got)
		}
	}
}

func TestTrade_IsWin(t *testing.T) {
	win := &Trade{Side: SideSell, RealizedPnL: d("10")}
	loss := &Trade{Side: SideSell, RealizedPnL: d("-10")}
	buy := &Trade{Side: SideBuy, RealizedPnL: d("10")} // realized never set on BUY

	if !win.IsWin() {
		t.Error("profitable sell should be a win")
	}
	if loss.IsWin() {
		t.Error("losing sell should not be a win")
	}
	if buy.IsWin() {
		t.Error("buy trades are never wins")
	}
}
