// Package features derives the fixed technical indicator set used by the
// direction classifier from a closing price series.
//
// Computation is a pure function of the series: every call recomputes every
// indicator from scratch and returns a fresh Table.
package features

import (
	"math"

	"direction-bot/internal/market"
)

// Indicator parameters.
const (
	MAWindow        = 14
	EMAWindow       = 14
	RSIWindow       = 14
	MACDFast        = 12
	MACDSlow        = 26
	BollingerWindow = 20
	BollingerDev    = 2.0
)

// Column positions inside a Row.
const (
	MA14 = iota
	EMA14
	RSI14
	MACDLine
	BBUpper
	BBLower

	Width
)

// Names lists the column names in Row order.
var Names = [Width]string{"ma_14", "ema_14", "rsi_14", "macd", "bb_upper", "bb_lower"}

// Row holds the indicator values for one series index. Every value is defined.
type Row struct {
	Index  int
	Values [Width]float64
}

// Vector returns the values as a new slice.
func (r Row) Vector() []float64 {
	v := make([]float64, Width)
	copy(v, r.Values[:])
	return v
}

// Table is the ordered set of complete rows for a series.
type Table struct {
	Rows []Row
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Indices returns the series index of every row, ascending.
func (t Table) Indices() []int {
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Index
	}
	return out
}

// Last returns the final row and whether the table is non-empty.
func (t Table) Last() (Row, bool) {
	if len(t.Rows) == 0 {
		return Row{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// Compute returns one Row per index at which every indicator is defined.
// Indices without enough trailing history are dropped.
func Compute(series market.Series) Table {
	cols := columns(series.Closes())

	var rows []Row
	for i := 0; i < series.Len(); i++ {
		if r, ok := rowAt(cols, i); ok {
			rows = append(rows, r)
		}
	}
	return Table{Rows: rows}
}

// Latest returns the row for the most recent index, or false when that
// index does not yet have complete indicator history.
func Latest(series market.Series) (Row, bool) {
	if series.Len() == 0 {
		return Row{}, false
	}
	return rowAt(columns(series.Closes()), series.LastIndex())
}

func columns(closes []float64) [Width][]float64 {
	var cols [Width][]float64
	cols[MA14] = SMA(closes, MAWindow)
	cols[EMA14] = EMA(closes, EMAWindow)
	cols[RSI14] = RSI(closes, RSIWindow)
	cols[MACDLine] = MACD(closes, MACDFast, MACDSlow)
	cols[BBUpper], cols[BBLower] = Bollinger(closes, BollingerWindow, BollingerDev)
	return cols
}

func rowAt(cols [Width][]float64, i int) (Row, bool) {
	r := Row{Index: i}
	for c := 0; c < Width; c++ {
		v := cols[c][i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Row{}, false
		}
		r.Values[c] = v
	}
	return r, true
}
