package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) got() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	d := NewDispatcher(8, []Sink{a, b})

	e := OrderCreated(42, 7, time.Now())
	d.Publish(context.Background(), e)
	require.NoError(t, d.Close(context.Background()))

	for _, s := range []*recordingSink{a, b} {
		got := s.got()
		require.Len(t, got, 1)
		assert.Equal(t, int64(42), got[0].OrderID)
		assert.Equal(t, TypeOrderCreated, got[0].Type)
		assert.NotEmpty(t, got[0].ID)
	}
}

func TestDispatcherDeliversOnceOnAmbiguousFailure(t *testing.T) {
	var calls atomic.Int32
	timingOut := SinkFunc(func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("ack timeout")
	})
	d := NewDispatcher(1, []Sink{timingOut}, WithRetry(3, time.Millisecond))

	d.Publish(context.Background(), OrderCreated(1, 1, time.Now()))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatcherRetriesUnsentEvent(t *testing.T) {
	var calls atomic.Int32
	flaky := SinkFunc(func(context.Context, Event) error {
		if calls.Add(1) < 3 {
			return NotSent(errors.New("connection refused"))
		}
		return nil
	})
	d := NewDispatcher(1, []Sink{flaky}, WithRetry(5, time.Millisecond))

	d.Publish(context.Background(), OrderCreated(1, 1, time.Now()))
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverStopsAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	down := SinkFunc(func(context.Context, Event) error {
		calls.Add(1)
		return NotSent(errors.New("connection refused"))
	})
	d := &Dispatcher{sinks: []Sink{down}, maxRetries: 2, retryBase: time.Millisecond, timeout: time.Second}

	err := d.deliver(OrderCreated(1, 1, time.Now()))
	assert.ErrorIs(t, err, ErrNotSent)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNotSentMarking(t *testing.T) {
	assert.NoError(t, NotSent(nil))

	cause := errors.New("refused")
	err := fmt.Errorf("publishing: %w", NotSent(cause))
	assert.ErrorIs(t, err, ErrNotSent)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "publishing: refused", err.Error())

	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	assert.True(t, DialFailed(fmt.Errorf("wrapped: %w", dial)))
	assert.False(t, DialFailed(&net.OpError{Op: "read", Net: "tcp", Err: errors.New("reset")}))
	assert.False(t, DialFailed(cause))
}

func TestDispatcherFailureDoesNotStopOtherSinks(t *testing.T) {
	good := &recordingSink{}
	bad := SinkFunc(func(context.Context, Event) error { return errors.New("down") })
	d := NewDispatcher(4, []Sink{bad, good}, WithRetry(1, time.Millisecond))

	d.Publish(context.Background(), OrderCreated(1, 1, time.Now()))
	d.Publish(context.Background(), OrderCreated(2, 1, time.Now()))
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, good.got(), 2)
}

func TestPublishNeverBlocks(t *testing.T) {
	release := make(chan struct{})
	blocking := SinkFunc(func(ctx context.Context, _ Event) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	d := NewDispatcher(1, []Sink{blocking})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Publish(context.Background(), OrderCreated(int64(i), 1, time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	close(release)
	require.NoError(t, d.Close(context.Background()))
}

func TestPublishAfterClose(t *testing.T) {
	s := &recordingSink{}
	d := NewDispatcher(1, []Sink{s})
	require.NoError(t, d.Close(context.Background()))

	d.Publish(context.Background(), OrderCreated(1, 1, time.Now()))
	assert.Empty(t, s.got())
	assert.ErrorIs(t, d.Close(context.Background()), ErrClosed)
}
