package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"direction-bot/internal/market"
	"direction-bot/internal/storage"
)

func main() {
	var (
		out        = flag.String("out", "sample_data.csv", "CSV file to write")
		dataPath   = flag.String("data", "", "Also seed the bbolt price history in this directory")
		pair       = flag.String("pair", "EURUSD-OTC", "Pair to store the history under")
		points     = flag.Int("points", 500, "Number of one-minute observations")
		startPrice = flag.Float64("start-price", 1.1, "Starting price")
		volatility = flag.Float64("volatility", 0.0005, "Per-step volatility as a fraction of price")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	fmt.Printf("Generating %d observations for %s...\n", *points, *pair)

	series := market.RandomWalk(market.RandomWalkConfig{
		Points:        *points,
		Start:         *startPrice,
		Volatility:    *volatility,
		MeanReversion: 0.05,
		Interval:      time.Minute,
		StartTime:     time.Now().Add(-time.Duration(*points) * time.Minute).Truncate(time.Minute),
		Seed:          *seed,
	})

	if err := writeCSV(*out, series); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	fmt.Printf("✓ Wrote %s\n", *out)

	if *dataPath == "" {
		return
	}
	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	if err := store.StoreSeries(*pair, series); err != nil {
		log.Fatalf("Failed to seed storage: %v", err)
	}
	fmt.Printf("✓ Seeded price history in %s\n", *dataPath)
}

func writeCSV(path string, series market.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := market.WriteCSV(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
