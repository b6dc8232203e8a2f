// Package notify delivers "transactions changed" events after a money operation commits.
//
// Notifications are synchronous and in-process: Notify returns only after every
// subscriber has run, so a slow subscriber stalls the caller that committed.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TransactionsChanged is published once per committed money operation.
type TransactionsChanged struct {
	EventID        uuid.UUID `json:"event_id"`
	Kind           string    `json:"kind"`
	UserIDs        []int64   `json:"user_ids"`
	TransactionIDs []int64   `json:"transaction_ids"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewEvent builds a TransactionsChanged event with a fresh ID.
func NewEvent(kind string, userIDs, transactionIDs []int64) TransactionsChanged {
	return TransactionsChanged{
		EventID:        uuid.New(),
		Kind:           kind,
		UserIDs:        userIDs,
		TransactionIDs: transactionIDs,
		OccurredAt:     time.Now().UTC(),
	}
}

// Notifier receives committed-transaction events.
type Notifier interface {
	Notify(ctx context.Context, event TransactionsChanged) error
}

// Subscriber is an in-process callback.
type Subscriber func(ctx context.Context, event TransactionsChanged)

// Dispatcher fans events out to in-process subscribers in subscription order.
type Dispatcher struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
	logger      *slog.Logger
}

type subscription struct {
	id int
	fn Subscriber
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Subscribe registers fn and returns a function that removes it.
func (d *Dispatcher) Subscribe(fn Subscriber) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.subscribers = append(d.subscribers, subscription{id: id, fn: fn})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.subscribers {
			if s.id == id {
				d.subscribers = append(d.subscribers[:i:i], d.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Notify runs every subscriber. A panicking subscriber is logged and skipped.
func (d *Dispatcher) Notify(ctx context.Context, event TransactionsChanged) error {
	d.mu.RLock()
	subs := make([]subscription, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.RUnlock()

	for _, s := range subs {
		d.call(ctx, s.fn, event)
	}
	return nil
}

func (d *Dispatcher) call(ctx context.Context, fn Subscriber, event TransactionsChanged) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Transactions-changed subscriber panicked", "event_id", event.EventID, "panic", fmt.Sprint(r))
		}
	}()
	fn(ctx, event)
}

// Multi forwards each event to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, event TransactionsChanged) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
