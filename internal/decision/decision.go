// Package decision turns a classifier output into an optional trade.
package decision

import (
	"errors"
	"fmt"
	"strings"

	"direction-bot/internal/ml"
)

// ErrInvalidDirection reports a direction string other than call or put.
var ErrInvalidDirection = errors.New("invalid direction")

// Direction is the side of a binary option.
type Direction string

const (
	Call Direction = "call"
	Put  Direction = "put"
)

// ParseDirection accepts call or put in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Call, Put:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Valid reports whether d is call or put.
func (d Direction) Valid() bool { return d == Call || d == Put }

// TradeInstruction is an order for the execution venue.
type TradeInstruction struct {
	Pair            string    `json:"pair"`
	Direction       Direction `json:"direction"`
	Amount          float64   `json:"amount"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Decide emits an instruction when the probability reaches threshold.
// The boundary is inclusive.
func Decide(result ml.Prediction, pair string, amount float64, duration int, threshold float64) (TradeInstruction, bool) {
	if !(result.Probability >= threshold) {
		return TradeInstruction{}, false
	}
	dir := Put
	if result.Up {
		dir = Call
	}
	return TradeInstruction{
		Pair:            pair,
		Direction:       dir,
		Amount:          amount,
		DurationMinutes: duration,
	}, true
}

// Policy carries the configured trade parameters so callers can decide with
// a single argument.
type Policy struct {
	Pair            string
	Amount          float64
	DurationMinutes int
	Threshold       float64
}

func (p Policy) Decide(result ml.Prediction) (TradeInstruction, bool) {
	return Decide(result, p.Pair, p.Amount, p.DurationMinutes, p.Threshold)
}

// Validate rejects a policy that could never or always trade nonsensically.
func (p Policy) Validate() error {
	switch {
	case p.Pair == "":
		return errors.New("pair is required")
	case p.Amount <= 0:
		return fmt.Errorf("amount must be positive, got %v", p.Amount)
	case p.DurationMinutes <= 0:
		return fmt.Errorf("duration must be positive, got %d", p.DurationMinutes)
	case p.Threshold <= 0 || p.Threshold > 1:
		return fmt.Errorf("threshold must be in (0,1], got %v", p.Threshold)
	}
	return nil
}
