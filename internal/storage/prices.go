package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"direction-bot/internal/market"

	"go.etcd.io/bbolt"
)

// PriceRecord is one stored close.
type PriceRecord struct {
	Pair      string    `json:"pair"`
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// StorePrice stores one close. A second record at the same timestamp
// replaces the first.
func (s *Store) StorePrice(record PriceRecord) error {
	if record.Timestamp.IsZero() {
		return errors.New("price record has no timestamp")
	}
	return s.store(pricesBucket, record.Pair, record.Timestamp, record)
}

// StoreSeries stores every observation of series in one transaction.
// Observations must carry timestamps.
func (s *Store) StoreSeries(pair string, series market.Series) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for i, o := range series.Observations() {
			if o.Time.IsZero() {
				return fmt.Errorf("observation %d has no timestamp", i)
			}
			if err := put(tx, pricesBucket, pair, o.Time, PriceRecord{Pair: pair, Timestamp: o.Time, Close: o.Close}); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPrices returns the closes of pair within [start, end], oldest first.
func (s *Store) GetPrices(pair string, start, end time.Time) ([]PriceRecord, error) {
	return getRange[PriceRecord](s, pricesBucket, pair, start, end)
}

// Series returns the full stored history of pair.
func (s *Store) Series(pair string) (market.Series, error) {
	records, err := all[PriceRecord](s, pricesBucket, pair)
	if err != nil {
		return market.Series{}, err
	}
	obs := make([]market.Observation, len(records))
	for i, r := range records {
		obs[i] = market.Observation{Time: r.Timestamp, Close: r.Close}
	}
	series := market.NewSeries(obs)
	if err := series.Validate(); err != nil {
		return market.Series{}, fmt.Errorf("stored history for %s: %w", pair, err)
	}
	return series, nil
}

// HistorySource serves the stored history of one pair as a market.Source.
// Limit, when positive, keeps only the most recent observations.
type HistorySource struct {
	Store *Store
	Pair  string
	Limit int
}

func (h HistorySource) Load(_ context.Context) (market.Series, error) {
	s, err := h.Store.Series(h.Pair)
	if err != nil {
		return market.Series{}, err
	}
	if h.Limit > 0 {
		s = s.Tail(h.Limit)
	}
	return s, nil
}
