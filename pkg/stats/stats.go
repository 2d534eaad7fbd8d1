package stats

import "math"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std returns the population standard deviation of values.
// Returns 0 for fewer than 2 values.
func Std(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Returns computes simple returns between consecutive values:
// r_i = (v_i - v_{i-1}) / v_{i-1}. Points with a zero predecessor are
// skipped to avoid division by zero. Returns nil for fewer than 2 values.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (values[i]-prev)/prev)
	}
	return out
}

// Sharpe computes the annualized Sharpe ratio over a value series:
// mean(returns)/std(returns) * sqrt(periodsPerYear).
// Defined as 0 when there are fewer than 2 returns or zero variance.
func Sharpe(values []float64, periodsPerYear float64) float64 {
	rets := Returns(values)
	if len(rets) < 2 {
		return 0
	}
	std := Std(rets)
	if std == 0 {
		return 0
	}
	return Mean(rets) / std * math.Sqrt(periodsPerYear)
}
