// Package storage provides persistent data storage for the prediction bot.
// It uses BoltDB to keep the price history of each pair together with a
// journal of the predictions made and the orders sent.
//
// Keys have the form "pair_timestamp" with a zero-padded unix-nano
// timestamp, so a cursor walks one pair in time order.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	pricesBucket      = "prices"
	predictionsBucket = "predictions"
	ordersBucket      = "orders"
)

const dbFile = "direction-bot.db"

// Store provides persistent storage using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the database under dataPath and ensures every
// bucket exists.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{pricesBucket, predictionsBucket, ordersBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func key(pair string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s_%020d", pair, ts.UnixNano()))
}

// epoch is the earliest storable timestamp; keys of earlier times would
// carry a sign and break cursor order.
var epoch = time.Unix(0, 0)

func put(tx *bbolt.Tx, bucket, pair string, ts time.Time, record any) error {
	if ts.Before(epoch) {
		return fmt.Errorf("%s record timestamp %s is before the Unix epoch", bucket, ts.Format(time.RFC3339))
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", bucket, err)
	}
	return tx.Bucket([]byte(bucket)).Put(key(pair, ts), data)
}

func (s *Store) store(bucket, pair string, ts time.Time, record any) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, bucket, pair, ts, record)
	})
}

// getRange returns the records of pair with start <= timestamp <= end,
// oldest first. Malformed records are skipped.
func getRange[T any](s *Store, bucket, pair string, start, end time.Time) ([]T, error) {
	var records []T

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucket)).Cursor()

		prefix := []byte(pair + "_")
		endKey := key(pair, end)
		for k, v := c.Seek(key(pair, start)); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				break
			}
			var rec T
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// all returns every record of pair, oldest first.
func all[T any](s *Store, bucket, pair string) ([]T, error) {
	return getRange[T](s, bucket, pair, time.Unix(0, 0), time.Unix(0, 1<<62))
}
