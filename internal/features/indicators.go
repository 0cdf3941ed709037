package features

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// Every indicator returns a slice aligned with its input where undefined
// positions hold NaN.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA is the simple moving average over window closes.
func SMA(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	sma := talib.Sma(closes, window)
	copy(out[window-1:], sma[window-1:])
	return out
}

// ewm is an exponentially weighted mean seeded with the first value
// (recursive form, no bias adjustment). Positions before minPeriods-1 are NaN.
func ewm(values []float64, alpha float64, minPeriods int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out
	}
	acc := values[0]
	for i, v := range values {
		if i > 0 {
			acc = alpha*v + (1-alpha)*acc
		}
		if i >= minPeriods-1 {
			out[i] = acc
		}
	}
	return out
}

// EMA is the exponential moving average with span window, defined once
// window closes have been seen.
func EMA(closes []float64, window int) []float64 {
	if window <= 0 {
		return nanSlice(len(closes))
	}
	return ewm(closes, 2/float64(window+1), window)
}

// RSI is the relative strength index using Wilder smoothing
// (alpha = 1/window) of up and down moves.
func RSI(closes []float64, window int) []float64 {
	n := len(closes)
	if window <= 0 {
		return nanSlice(n)
	}
	up := make([]float64, n)
	down := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			up[i] = d
		} else if d < 0 {
			down[i] = -d
		}
	}

	alpha := 1 / float64(window)
	emaUp := ewm(up, alpha, window)
	emaDown := ewm(down, alpha, window)

	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(emaDown[i]) {
			continue
		}
		if emaDown[i] == 0 {
			out[i] = 100
			continue
		}
		out[i] = 100 - 100/(1+emaUp[i]/emaDown[i])
	}
	return out
}

// MACD is the fast EMA minus the slow EMA. Both averages are seeded with the
// first close, so the line is defined at every index.
func MACD(closes []float64, fast, slow int) []float64 {
	f := ewm(closes, 2/float64(fast+1), 1)
	s := ewm(closes, 2/float64(slow+1), 1)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = f[i] - s[i]
	}
	return out
}

// Bollinger returns the upper and lower bands: moving average plus or minus
// dev population standard deviations over window closes. The deviation is
// computed two-pass per window so small prices keep their spread.
func Bollinger(closes []float64, window int, dev float64) (upper, lower []float64) {
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	if window <= 0 || len(closes) < window {
		return upper, lower
	}
	mid := talib.Sma(closes, window)
	for i := window - 1; i < len(closes); i++ {
		_, std := stat.PopMeanStdDev(closes[i-window+1:i+1], nil)
		upper[i] = mid[i] + dev*std
		lower[i] = mid[i] - dev*std
	}
	return upper, lower
}
