// Package notify delivers human-readable prediction and trade messages.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier delivers one message to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, text string) error

func (f Func) Notify(ctx context.Context, text string) error { return f(ctx, text) }

// Log writes messages to the process log.
type Log struct{}

func (Log) Notify(_ context.Context, text string) error {
	log.Info().Str("message", text).Msg("notification")
	return nil
}

// Buffer keeps every message it receives, in order.
type Buffer struct {
	mu       sync.Mutex
	messages []string
}

func (b *Buffer) Notify(_ context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, text)
	return nil
}

// Messages returns a copy of the received messages.
func (b *Buffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.messages...)
}

// Tee delivers each message to every notifier and joins their errors.
type Tee []Notifier

func (t Tee) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range t {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
