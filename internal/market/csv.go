package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// ReadCSV parses a CSV stream with a header row. A "close" column is
// required; a "timestamp" column is used when present.
func ReadCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return Series{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	indices := make(map[string]int)
	for i, col := range header {
		indices[col] = i
	}

	closeIdx, ok := indices["close"]
	if !ok {
		return Series{}, fmt.Errorf("CSV header has no close column")
	}
	tsIdx, hasTS := indices["timestamp"]

	var obs []Observation
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return Series{}, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		price, err := strconv.ParseFloat(record[closeIdx], 64)
		if err != nil {
			return Series{}, fmt.Errorf("CSV line %d: invalid close %q: %w", line, record[closeIdx], err)
		}

		o := Observation{Close: price}
		if hasTS && tsIdx < len(record) {
			if ts, err := time.Parse(timestampLayout, record[tsIdx]); err == nil {
				o.Time = ts
			}
		}
		obs = append(obs, o)
	}

	s := Series{obs: obs}
	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	return s, nil
}

// LoadCSV reads a series from a CSV file.
func LoadCSV(path string) (Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// WriteCSV writes the series as "timestamp,close" rows.
func WriteCSV(w io.Writer, s Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"timestamp", "close"}); err != nil {
		return err
	}
	for _, o := range s.obs {
		ts := ""
		if !o.Time.IsZero() {
			ts = o.Time.UTC().Format(timestampLayout)
		}
		if err := writer.Write([]string{ts, strconv.FormatFloat(o.Close, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CSVSource loads history from a file on every call.
type CSVSource struct {
	Path string
}

func (c CSVSource) Load(_ context.Context) (Series, error) {
	return LoadCSV(c.Path)
}
