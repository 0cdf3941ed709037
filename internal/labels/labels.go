// Package labels builds the binary training target: whether the next close
// is strictly above the current one.
package labels

import "direction-bot/internal/market"

// Generate labels every index in indices that has a following observation.
// Indices outside the series, and the series' last index, are left out.
func Generate(series market.Series, indices []int) map[int]bool {
	out := make(map[int]bool, len(indices))
	last := series.LastIndex()
	for _, i := range indices {
		if i < 0 || i >= last {
			continue
		}
		out[i] = series.Close(i+1) > series.Close(i)
	}
	return out
}

// Up reports whether the close after index i is strictly higher. ok is false
// when index i has no following observation.
func Up(series market.Series, i int) (up, ok bool) {
	if i < 0 || i >= series.LastIndex() {
		return false, false
	}
	return series.Close(i+1) > series.Close(i), true
}
