// Package paper is an in-memory practice account that accepts orders
// against a virtual balance.
package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"direction-bot/internal/decision"
	"direction-bot/internal/exchange"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrClosed              = errors.New("paper account closed")
)

// Order is an accepted practice order.
type Order struct {
	Ref         exchange.OrderReference
	Instruction decision.TradeInstruction
}

type Account struct {
	mu      sync.Mutex
	balance float64
	orders  []Order
	closed  bool
	now     func() time.Time
}

// New opens a practice account holding balance.
func New(balance float64) *Account {
	return &Account{balance: balance, now: time.Now}
}

// PlaceOrder debits the stake and records the order.
func (a *Account) PlaceOrder(ctx context.Context, instr decision.TradeInstruction) (exchange.OrderReference, error) {
	if err := ctx.Err(); err != nil {
		return exchange.OrderReference{}, err
	}
	dir, err := decision.ParseDirection(string(instr.Direction))
	if err != nil {
		return exchange.OrderReference{}, err
	}
	if instr.Amount <= 0 {
		return exchange.OrderReference{}, fmt.Errorf("amount must be positive, got %v", instr.Amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return exchange.OrderReference{}, ErrClosed
	}
	if instr.Amount > a.balance {
		return exchange.OrderReference{}, fmt.Errorf("%w: stake %.2f, balance %.2f", ErrInsufficientBalance, instr.Amount, a.balance)
	}

	a.balance -= instr.Amount
	instr.Direction = dir
	ref := exchange.OrderReference{
		ID:       uuid.NewString(),
		Venue:    "paper",
		PlacedAt: a.now(),
	}
	a.orders = append(a.orders, Order{Ref: ref, Instruction: instr})

	log.Debug().
		Str("order_id", ref.ID).
		Str("pair", instr.Pair).
		Str("direction", string(dir)).
		Float64("balance", a.balance).
		Msg("paper order placed")
	return ref, nil
}

// Balance returns the remaining balance.
func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Orders returns a copy of the accepted orders, oldest first.
func (a *Account) Orders() []Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Order(nil), a.orders...)
}

func (a *Account) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
