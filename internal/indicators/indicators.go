// Package indicators provides pure signal-generator functions over closing
// price series. Every function returns a slice aligned to its input, with
// NaN marking the warmup positions where the indicator is undefined.
package indicators

import "math"

// SMA computes the simple moving average over the last p points.
// Undefined (NaN) for i < p-1.
func SMA(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

// RSI computes the relative strength index over a window of p price deltas,
// using a simple rolling mean of gains and losses (not Wilder smoothing).
// RSI is 100 when the average loss over the window is zero. Undefined (NaN)
// for i < p, since the first delta only exists at index 1.
func RSI(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}

	var gainSum, lossSum float64
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			gainSum += d
		} else {
			lossSum -= d
		}
		if i > p {
			old := x[i-p] - x[i-p-1]
			if old > 0 {
				gainSum -= old
			} else {
				lossSum += old
			}
		}
		if i < p {
			continue
		}

		avgGain := gainSum / float64(p)
		avgLoss := lossSum / float64(p)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
