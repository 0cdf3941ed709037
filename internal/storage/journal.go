package storage

import (
	"time"
)

// PredictionRecord journals one classifier output.
type PredictionRecord struct {
	Pair        string    `json:"pair"`
	Timestamp   time.Time `json:"timestamp"`
	Model       string    `json:"model"`
	Probability float64   `json:"probability"`
	Up          bool      `json:"up"`
	Traded      bool      `json:"traded"`
}

// OrderRecord journals one order attempt. Error is empty on success.
type OrderRecord struct {
	Pair            string    `json:"pair"`
	Timestamp       time.Time `json:"timestamp"`
	Direction       string    `json:"direction"`
	Amount          float64   `json:"amount"`
	DurationMinutes int       `json:"duration_minutes"`
	OrderID         string    `json:"order_id,omitempty"`
	Venue           string    `json:"venue,omitempty"`
	Error           string    `json:"error,omitempty"`
}

func (s *Store) StorePrediction(record PredictionRecord) error {
	return s.store(predictionsBucket, record.Pair, record.Timestamp, record)
}

func (s *Store) StoreOrder(record OrderRecord) error {
	return s.store(ordersBucket, record.Pair, record.Timestamp, record)
}

// GetPredictions returns the journalled predictions of pair within [start, end].
func (s *Store) GetPredictions(pair string, start, end time.Time) ([]PredictionRecord, error) {
	return getRange[PredictionRecord](s, predictionsBucket, pair, start, end)
}

// GetOrders returns the journalled orders of pair within [start, end].
func (s *Store) GetOrders(pair string, start, end time.Time) ([]OrderRecord, error) {
	return getRange[OrderRecord](s, ordersBucket, pair, start, end)
}
