package market

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// Source supplies historical prices for one instrument.
type Source interface {
	Load(ctx context.Context) (Series, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Series, error)

func (f SourceFunc) Load(ctx context.Context) (Series, error) { return f(ctx) }

// Fallback is the minimal synthetic series used when no history is available.
func Fallback() Series {
	return FromCloses(1, 1.1, 1.05, 1.2, 1.15, 1.3)
}

// LoadOrFallback loads from src and falls back to the synthetic series on
// any error, so a missing history never propagates into the pipeline.
func LoadOrFallback(ctx context.Context, src Source) Series {
	if src == nil {
		log.Warn().Msg("no history source configured; using dummy data")
		return Fallback()
	}
	s, err := src.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("history unavailable; using dummy data")
		return Fallback()
	}
	log.Info().Int("observations", s.Len()).Msg("history loaded")
	return s
}

// RandomWalkConfig drives the sample data generator.
type RandomWalkConfig struct {
	Points        int
	Start         float64
	Volatility    float64 // per step, as a fraction of price
	Drift         float64 // per step
	MeanReversion float64
	Interval      time.Duration
	StartTime     time.Time
	Seed          int64
}

// RandomWalk generates a mean-reverting geometric random walk.
func RandomWalk(c RandomWalkConfig) Series {
	if c.Points <= 0 {
		return Series{}
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	rng := rand.New(rand.NewSource(c.Seed))

	obs := make([]Observation, c.Points)
	price := c.Start
	ts := c.StartTime
	for i := range obs {
		trend := c.Start * (1 + c.Drift*float64(i))
		reversion := c.MeanReversion * (trend - price) / math.Max(price, 1e-9)
		price *= 1 + reversion + c.Volatility*rng.NormFloat64()
		if price < c.Start*0.01 {
			price = c.Start * 0.01
		}
		obs[i] = Observation{Time: ts, Close: price}
		ts = ts.Add(c.Interval)
	}
	return Series{obs: obs}
}
