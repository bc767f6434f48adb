package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"orderhub/internal/models"
)

// ErrQueueFull is returned when the async queue cannot take another event.
var ErrQueueFull = errors.New("event queue full")

// ErrQueueClosed is returned when publishing after Close.
var ErrQueueClosed = errors.New("event queue closed")

// StatusPublisher publishes order status events.
type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, evt models.OrderStatusChanged) error
}

// Async decouples callers from the broker: events are queued in a bounded
// buffer and forwarded by one goroutine, in order.
type Async struct {
	next    StatusPublisher
	queue   chan models.OrderStatusChanged
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts forwarding to next. timeout bounds each forwarded publish.
func NewAsync(next StatusPublisher, size int, timeout time.Duration, logger *zap.Logger) *Async {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	a := &Async{
		next:    next,
		queue:   make(chan models.OrderStatusChanged, size),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// PublishStatusChanged enqueues evt without blocking.
func (a *Async) PublishStatusChanged(_ context.Context, evt models.OrderStatusChanged) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrQueueClosed
	}
	select {
	case a.queue <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for evt := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.PublishStatusChanged(ctx, evt); err != nil {
			a.logger.Warn("status event not published",
				zap.String("order_id", evt.OrderID),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting events and waits until the queued ones are forwarded.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
	return nil
}
