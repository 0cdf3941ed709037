package features

import (
	"math"
	"testing"

	"direction-bot/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start, step float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return market.FromCloses(closes...)
}

func TestSMA(t *testing.T) {
	closes := ramp(20, 1, 1).Closes()
	out := SMA(closes, 14)

	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d should be undefined", i)
	}
	assert.InDelta(t, 7.5, out[13], 1e-12)
	assert.InDelta(t, 13.5, out[19], 1e-12)

	short := SMA([]float64{1, 2, 3}, 14)
	for _, v := range short {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMA(t *testing.T) {
	out := EMA([]float64{1, 2, 3}, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 5.0/3.0, out[1], 1e-12)
	assert.InDelta(t, 2+5.0/9.0, out[2], 1e-12)

	flat := EMA(ramp(30, 4.2, 0).Closes(), 14)
	assert.True(t, math.IsNaN(flat[12]))
	assert.InDelta(t, 4.2, flat[13], 1e-12)
	assert.InDelta(t, 4.2, flat[29], 1e-12)
}

func TestRSI(t *testing.T) {
	out := RSI([]float64{1, 2, 1}, 2)
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 100.0, out[1])
	assert.InDelta(t, 100.0/3.0, out[2], 1e-9)

	rising := RSI(ramp(20, 1, 0.1).Closes(), 14)
	assert.True(t, math.IsNaN(rising[12]))
	assert.Equal(t, 100.0, rising[13])

	falling := RSI(ramp(20, 10, -0.1).Closes(), 14)
	assert.InDelta(t, 0.0, falling[19], 1e-12)
}

func TestMACD(t *testing.T) {
	flat := MACD(ramp(40, 1.5, 0).Closes(), 12, 26)
	for _, v := range flat {
		assert.InDelta(t, 0.0, v, 1e-12)
	}

	rising := MACD(ramp(40, 1, 1).Closes(), 12, 26)
	assert.Equal(t, 0.0, rising[0])
	// The fast average tracks a rising series more closely than the slow one.
	assert.Greater(t, rising[39], 0.0)
}

func TestBollinger(t *testing.T) {
	upper, lower := Bollinger(ramp(20, 1, 1).Closes(), 20, 2)
	std := math.Sqrt(399.0 / 12.0)

	assert.True(t, math.IsNaN(upper[18]))
	assert.True(t, math.IsNaN(lower[18]))
	assert.InDelta(t, 10.5+2*std, upper[19], 1e-9)
	assert.InDelta(t, 10.5-2*std, lower[19], 1e-9)

	upper, lower = Bollinger(ramp(25, 1.1, 0).Closes(), 20, 2)
	assert.InDelta(t, 1.1, upper[24], 1e-6)
	assert.InDelta(t, 1.1, lower[24], 1e-6)
}

func TestBollinger_SmallPrices(t *testing.T) {
	for _, scale := range []float64{1.1, 60000, 1e-3, 1e-5} {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = scale * (1 + 1e-4*math.Sin(float64(i)))
		}
		upper, lower := Bollinger(closes, 20, 2)

		window := closes[20:40]
		var mean float64
		for _, c := range window {
			mean += c
		}
		mean /= float64(len(window))
		var ss float64
		for _, c := range window {
			ss += (c - mean) * (c - mean)
		}
		std := math.Sqrt(ss / float64(len(window)))

		require.Greater(t, std, 0.0)
		assert.InEpsilon(t, 4*std, upper[39]-lower[39], 1e-6, "scale %g", scale)
		assert.InEpsilon(t, mean, (upper[39]+lower[39])/2, 1e-9, "scale %g", scale)
	}
}

func TestCompute_RowCount(t *testing.T) {
	tests := []struct {
		points int
		rows   int
	}{
		{0, 0},
		{6, 0},
		{19, 0},
		{20, 1},
		{35, 16},
		{100, 81},
	}

	for _, tt := range tests {
		table := Compute(ramp(tt.points, 1, 0.01))
		assert.Equal(t, tt.rows, table.Len(), "points=%d", tt.points)
		if tt.rows > 0 {
			assert.Equal(t, BollingerWindow-1, table.Rows[0].Index)
			last, ok := table.Last()
			require.True(t, ok)
			assert.Equal(t, tt.points-1, last.Index)
		}
	}
}

func TestCompute_NoUndefinedValues(t *testing.T) {
	s := market.RandomWalk(market.RandomWalkConfig{Points: 200, Start: 1.1, Volatility: 0.003, Seed: 3})
	table := Compute(s)
	require.Equal(t, 181, table.Len())

	prev := -1
	for _, r := range table.Rows {
		assert.Greater(t, r.Index, prev)
		prev = r.Index
		for c, v := range r.Values {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "row %d column %s", r.Index, Names[c])
		}
		assert.GreaterOrEqual(t, r.Values[BBUpper], r.Values[BBLower])
		assert.GreaterOrEqual(t, r.Values[RSI14], 0.0)
		assert.LessOrEqual(t, r.Values[RSI14], 100.0)
	}
}

func TestCompute_SampleSeriesTooShort(t *testing.T) {
	table := Compute(market.FromCloses(1, 1.1, 1.05, 1.2, 1.15, 1.3))
	assert.Equal(t, 0, table.Len())
	_, ok := table.Last()
	assert.False(t, ok)
}

func TestCompute_DoesNotMutateSeries(t *testing.T) {
	s := ramp(30, 1, 0.5)
	before := s.Closes()
	_ = Compute(s)
	assert.Equal(t, before, s.Closes())
}

func TestLatest(t *testing.T) {
	_, ok := Latest(market.Series{})
	assert.False(t, ok)

	_, ok = Latest(ramp(19, 1, 1))
	assert.False(t, ok)

	s := ramp(40, 1, 0.2)
	row, ok := Latest(s)
	require.True(t, ok)
	last, _ := Compute(s).Last()
	assert.Equal(t, last, row)
	assert.Equal(t, 39, row.Index)
}

func TestRow_Vector(t *testing.T) {
	r := Row{Values: [Width]float64{1, 2, 3, 4, 5, 6}}
	v := r.Vector()
	v[0] = 100
	assert.Equal(t, 1.0, r.Values[0])
	assert.Len(t, v, Width)
}
