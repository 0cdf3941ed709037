package decision

import (
	"math"
	"testing"

	"direction-bot/internal/ml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		p         float64
		threshold float64
		want      bool
		dir       Direction
	}{
		{"above threshold up", 0.9, 0.7, true, Call},
		{"exactly threshold", 0.7, 0.7, true, Call},
		{"below threshold", 0.69, 0.7, false, ""},
		{"low probability high confidence threshold", 0.3, 0.2, true, Put},
		{"exactly half", 0.5, 0.5, true, Put},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr, ok := Decide(ml.NewPrediction(tt.p), "EURUSD-OTC", 1, 3, tt.threshold)
			assert.Equal(t, tt.want, ok)
			if !ok {
				assert.Equal(t, TradeInstruction{}, instr)
				return
			}
			assert.Equal(t, tt.dir, instr.Direction)
			assert.Equal(t, "EURUSD-OTC", instr.Pair)
			assert.Equal(t, 1.0, instr.Amount)
			assert.Equal(t, 3, instr.DurationMinutes)
		})
	}
}

func TestDecide_OneULPBelowThreshold(t *testing.T) {
	threshold := 0.7
	below := math.Nextafter(threshold, 0)

	_, ok := Decide(ml.NewPrediction(below), "X", 1, 1, threshold)
	assert.False(t, ok)

	_, ok = Decide(ml.NewPrediction(threshold), "X", 1, 1, threshold)
	assert.True(t, ok)
}

func TestDecide_NaNNeverTrades(t *testing.T) {
	_, ok := Decide(ml.Prediction{Probability: math.NaN()}, "X", 1, 1, 0.7)
	assert.False(t, ok)
}

func TestDecide_UsesLabelNotProbabilityForDirection(t *testing.T) {
	instr, ok := Decide(ml.Prediction{Probability: 0.8, Up: false}, "X", 2, 5, 0.7)
	require.True(t, ok)
	assert.Equal(t, Put, instr.Direction)
}

func TestPolicy(t *testing.T) {
	p := Policy{Pair: "EURUSD-OTC", Amount: 1, DurationMinutes: 3, Threshold: 0.7}
	require.NoError(t, p.Validate())

	instr, ok := p.Decide(ml.NewPrediction(0.75))
	require.True(t, ok)
	assert.Equal(t, TradeInstruction{Pair: "EURUSD-OTC", Direction: Call, Amount: 1, DurationMinutes: 3}, instr)

	_, ok = p.Decide(ml.NewPrediction(0.6))
	assert.False(t, ok)
}

func TestPolicy_Validate(t *testing.T) {
	valid := Policy{Pair: "X", Amount: 1, DurationMinutes: 1, Threshold: 0.7}
	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"empty pair", func(p *Policy) { p.Pair = "" }},
		{"zero amount", func(p *Policy) { p.Amount = 0 }},
		{"zero duration", func(p *Policy) { p.DurationMinutes = 0 }},
		{"zero threshold", func(p *Policy) { p.Threshold = 0 }},
		{"threshold above one", func(p *Policy) { p.Threshold = 1.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"call", "CALL", " Call "} {
		d, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, Call, d)
	}
	d, err := ParseDirection("PUT")
	require.NoError(t, err)
	assert.Equal(t, Put, d)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.False(t, Direction("buy").Valid())
	assert.True(t, Put.Valid())
}
