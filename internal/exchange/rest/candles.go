package rest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"direction-bot/internal/market"
)

// Interval is a candle width accepted by the venue.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
)

// Candle is one OHLC bar.
type Candle struct {
	OpenTime int64   `json:"openTime"` // unix millis
	Open     float64 `json:"open,string"`
	High     float64 `json:"high,string"`
	Low      float64 `json:"low,string"`
	Close    float64 `json:"close,string"`
}

// GetCandles fetches up to limit candles for pair.
func (c *Client) GetCandles(ctx context.Context, pair string, interval Interval, limit int) ([]Candle, error) {
	params := map[string]string{
		"pair":     pair,
		"interval": string(interval),
		"limit":    strconv.Itoa(limit),
	}

	var candles []Candle
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&candles).
		Get(c.base + candlesPath)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return candles, nil
}

// CandleSource loads closing prices from the venue as a market.Source.
type CandleSource struct {
	Client   *Client
	Pair     string
	Interval Interval
	Limit    int
}

func (s CandleSource) Load(ctx context.Context) (market.Series, error) {
	candles, err := s.Client.GetCandles(ctx, s.Pair, s.Interval, s.Limit)
	if err != nil {
		return market.Series{}, err
	}
	return candlesToSeries(candles)
}

func candlesToSeries(candles []Candle) (market.Series, error) {
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].OpenTime < candles[j].OpenTime })

	obs := make([]market.Observation, 0, len(candles))
	for _, k := range candles {
		if n := len(obs); n > 0 && obs[n-1].Time.UnixMilli() == k.OpenTime {
			obs[n-1].Close = k.Close
			continue
		}
		obs = append(obs, market.Observation{Time: time.UnixMilli(k.OpenTime).UTC(), Close: k.Close})
	}

	s := market.NewSeries(obs)
	if err := s.Validate(); err != nil {
		return market.Series{}, fmt.Errorf("candles: %w", err)
	}
	return s, nil
}
