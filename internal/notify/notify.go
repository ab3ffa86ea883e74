// Package notify carries OrderCreated events from the checkout path to external sinks
// without blocking the caller.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-retry"

	"store-service/pkg/logkey"
)

// Sink delivers one event somewhere. Only errors wrapped with NotSent are retried;
// any other error is logged and the event is not delivered again.
type Sink interface {
	Deliver(ctx context.Context, e Event) error
}

type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Deliver(ctx context.Context, e Event) error { return f(ctx, e) }

// LogSink writes every event to the default logger.
var LogSink = SinkFunc(func(ctx context.Context, e Event) error {
	slog.InfoContext(ctx, "order created",
		slog.String(logkey.OrderID, strconv.FormatInt(e.OrderID, 10)),
		slog.String(logkey.CustomerID, strconv.FormatInt(e.CustomerID, 10)),
		slog.String("event_id", e.ID))
	return nil
})

var ErrClosed = errors.New("dispatcher is closed")

// ErrNotSent marks a failure that happened before any byte of the event left the process.
var ErrNotSent = errors.New("event not sent")

type notSentError struct{ err error }

func (e *notSentError) Error() string   { return e.err.Error() }
func (e *notSentError) Unwrap() []error { return []error{e.err, ErrNotSent} }

// NotSent marks err as safe to retry. A nil err stays nil.
func NotSent(err error) error {
	if err == nil {
		return nil
	}
	return &notSentError{err: err}
}

// DialFailed reports whether err comes from a connection that was never established.
func DialFailed(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

type Option func(*Dispatcher)

// WithRetry sets how often and how fast a failing sink is retried.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(d *Dispatcher) {
		d.maxRetries = maxRetries
		d.retryBase = base
	}
}

// WithDeliveryTimeout bounds one event's delivery across all sinks and retries.
func WithDeliveryTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// Dispatcher is a buffered queue drained by one worker goroutine.
// Publish never blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	queue      chan Event
	sinks      []Sink
	maxRetries uint64
	retryBase  time.Duration
	timeout    time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(size int, sinks []Sink, opts ...Option) *Dispatcher {
	if size < 1 {
		size = 1
	}
	d := &Dispatcher{
		queue:      make(chan Event, size),
		sinks:      sinks,
		maxRetries: 3,
		retryBase:  100 * time.Millisecond,
		timeout:    10 * time.Second,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// OrderCreated builds the event for a freshly committed order.
func OrderCreated(orderID, customerID int64, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeOrderCreated,
		OrderID:    orderID,
		CustomerID: customerID,
		CreatedAt:  at.UTC(),
	}
}

// Publish enqueues e and returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.WarnContext(ctx, "dropping event, dispatcher closed",
			slog.String(logkey.OrderID, strconv.FormatInt(e.OrderID, 10)))
		return
	}
	select {
	case d.queue <- e:
	default:
		slog.ErrorContext(ctx, "dropping event, notification queue full",
			slog.String(logkey.OrderID, strconv.FormatInt(e.OrderID, 10)),
			slog.Int("queue_size", cap(d.queue)))
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notification queue to drain: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		if err := d.deliver(e); err != nil {
			slog.Error("failed to deliver event",
				slog.String(logkey.OrderID, strconv.FormatInt(e.OrderID, 10)),
				slog.String("event_type", e.Type),
				slog.String(logkey.ERROR, err.Error()))
		}
	}
}

func (d *Dispatcher) deliver(e Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var result *multierror.Error
	for _, sink := range d.sinks {
		b := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.retryBase))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			err := sink.Deliver(ctx, e)
			if errors.Is(err, ErrNotSent) {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
