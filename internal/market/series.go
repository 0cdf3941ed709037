// Package market holds the price series the prediction pipeline works on,
// together with the ways a series gets into the process: CSV files, the
// bbolt history store, a REST candle endpoint, or the synthetic fallback.
package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrEmptySeries is returned when a series has no observations.
var ErrEmptySeries = errors.New("price series is empty")

// Observation is a single closing price. Time is optional; the position of
// the observation inside its Series is its index.
type Observation struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// Series is an ordered, read-only sequence of observations for one instrument.
type Series struct {
	obs []Observation
}

// NewSeries copies the observations into a new Series.
func NewSeries(obs []Observation) Series {
	cp := make([]Observation, len(obs))
	copy(cp, obs)
	return Series{obs: cp}
}

// FromCloses builds a Series from bare closing prices.
func FromCloses(closes ...float64) Series {
	obs := make([]Observation, len(closes))
	for i, c := range closes {
		obs[i] = Observation{Close: c}
	}
	return Series{obs: obs}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.obs) }

// At returns the observation at index i.
func (s Series) At(i int) Observation { return s.obs[i] }

// Close returns the closing price at index i.
func (s Series) Close(i int) float64 { return s.obs[i].Close }

// LastIndex returns the index of the most recent observation, or -1 when empty.
func (s Series) LastIndex() int { return len(s.obs) - 1 }

// Closes returns a fresh copy of the closing prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.obs))
	for i, o := range s.obs {
		out[i] = o.Close
	}
	return out
}

// Observations returns a fresh copy of the observations.
func (s Series) Observations() []Observation {
	cp := make([]Observation, len(s.obs))
	copy(cp, s.obs)
	return cp
}

// Append returns a new Series with the observations appended; s is untouched.
func (s Series) Append(obs ...Observation) Series {
	out := make([]Observation, 0, len(s.obs)+len(obs))
	out = append(out, s.obs...)
	out = append(out, obs...)
	return Series{obs: out}
}

// Tail returns a Series holding at most the last n observations.
func (s Series) Tail(n int) Series {
	if n >= len(s.obs) {
		return s
	}
	if n <= 0 {
		return Series{}
	}
	return NewSeries(s.obs[len(s.obs)-n:])
}

// Validate checks that the series has at least one observation, that every
// close is finite and that timestamps, when present, strictly increase.
func (s Series) Validate() error {
	if len(s.obs) == 0 {
		return ErrEmptySeries
	}
	for i, o := range s.obs {
		if math.IsNaN(o.Close) || math.IsInf(o.Close, 0) {
			return fmt.Errorf("invalid close at index %d: %v", i, o.Close)
		}
		if i == 0 || o.Time.IsZero() || s.obs[i-1].Time.IsZero() {
			continue
		}
		if !o.Time.After(s.obs[i-1].Time) {
			return fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}
