package market

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		series  Series
		wantErr bool
	}{
		{"empty", Series{}, true},
		{"single", FromCloses(1), false},
		{"nan close", FromCloses(1, math.NaN()), true},
		{"inf close", FromCloses(1, math.Inf(1)), true},
		{"increasing times", NewSeries([]Observation{{Time: now, Close: 1}, {Time: now.Add(time.Minute), Close: 2}}), false},
		{"repeated time", NewSeries([]Observation{{Time: now, Close: 1}, {Time: now, Close: 2}}), true},
		{"decreasing time", NewSeries([]Observation{{Time: now, Close: 1}, {Time: now.Add(-time.Minute), Close: 2}}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSeries_CopiesAreIndependent(t *testing.T) {
	obs := []Observation{{Close: 1}, {Close: 2}}
	s := NewSeries(obs)
	obs[0].Close = 99
	assert.Equal(t, 1.0, s.Close(0))

	closes := s.Closes()
	closes[1] = 42
	assert.Equal(t, 2.0, s.Close(1))

	longer := s.Append(Observation{Close: 3})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, longer.Len())
}

func TestSeries_Tail(t *testing.T) {
	s := FromCloses(1, 2, 3, 4)
	assert.Equal(t, []float64{3, 4}, s.Tail(2).Closes())
	assert.Equal(t, 4, s.Tail(10).Len())
	assert.Equal(t, 0, s.Tail(0).Len())
}

func TestReadCSV(t *testing.T) {
	in := "timestamp,open,close\n2024-01-01 00:00:00,1,1.5\n2024-01-01 00:01:00,1,1.6\n2024-01-01 00:02:00,1,1.7\n"
	s, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.6, 1.7}, s.Closes())
	assert.Equal(t, 2024, s.At(0).Time.Year())
}

func TestReadCSV_InvalidClose(t *testing.T) {
	in := "timestamp,open,close\n2024-01-01 00:00:00,1,1.5\n2024-01-01 00:01:00,1,bad\n2024-01-01 00:02:00,1,1.7\n"
	_, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadCSV_MissingClose(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("timestamp,price\nx,1\n"))
	assert.Error(t, err)
}

func TestReadCSV_NoRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("close\n"))
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	s := RandomWalk(RandomWalkConfig{
		Points:     30,
		Start:      100,
		Volatility: 0.01,
		StartTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:       7,
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Closes(), back.Closes())
}

func TestLoadOrFallback(t *testing.T) {
	missing := CSVSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	s := LoadOrFallback(context.Background(), missing)
	assert.Equal(t, Fallback().Closes(), s.Closes())

	s = LoadOrFallback(context.Background(), nil)
	assert.Equal(t, 6, s.Len())

	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("close\n1\n2\n3\n"), 0o600))
	s = LoadOrFallback(context.Background(), CSVSource{Path: path})
	assert.Equal(t, []float64{1, 2, 3}, s.Closes())
}

func TestRandomWalk_Deterministic(t *testing.T) {
	c := RandomWalkConfig{Points: 50, Start: 1.1, Volatility: 0.002, Seed: 42}
	a := RandomWalk(c)
	b := RandomWalk(c)
	assert.Equal(t, a.Closes(), b.Closes())
	assert.Equal(t, 50, a.Len())
	for _, v := range a.Closes() {
		assert.Greater(t, v, 0.0)
	}
	assert.Equal(t, 0, RandomWalk(RandomWalkConfig{}).Len())
}
