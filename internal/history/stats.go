package history

import "math"

// Tail returns the last n values, or all values when fewer exist.
func Tail(values []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// Mean returns the arithmetic mean, zero for an empty slice.
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

// StdDev returns the population standard deviation, zero for an empty slice.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	acc := 0.0
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}

// Momentum returns the newest value minus the value n positions from the end
// (values[len-1] - values[len-n]); zero when fewer than n values exist.
func Momentum(values []float64, n int) float64 {
	if n <= 0 || len(values) < n {
		return 0
	}
	return values[len(values)-1] - values[len(values)-n]
}
