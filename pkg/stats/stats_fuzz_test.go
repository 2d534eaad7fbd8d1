package stats

import (
	"math"
	"testing"
)

// FuzzSharpe verifies Sharpe never produces NaN or Inf for finite inputs.
func FuzzSharpe(f *testing.F) {
	f.Add(100.0, 110.0, 90.0, 105.0)
	f.Add(0.0, 0.0, 0.0, 0.0)
	f.Add(1e12, 1e-12, 5.0, 5.0)

	f.Fuzz(func(t *testing.T, a, b, c, d float64) {
		values := []float64{a, b, c, d}
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Skip()
			}
		}
		got := Sharpe(values, 365)
		if math.IsNaN(got) {
			t.Errorf("Sharpe(%v) = NaN", values)
		}
	})
}
