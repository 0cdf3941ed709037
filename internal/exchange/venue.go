// Package exchange defines the execution venue contract shared by the
// paper and REST venues.
package exchange

import (
	"context"
	"time"

	"direction-bot/internal/decision"
)

// OrderReference identifies an accepted order at the venue.
type OrderReference struct {
	ID       string    `json:"id"`
	Venue    string    `json:"venue"`
	PlacedAt time.Time `json:"placed_at"`
}

// Venue accepts trade instructions.
type Venue interface {
	PlaceOrder(ctx context.Context, instr decision.TradeInstruction) (OrderReference, error)
	Close() error
}
