package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderhub/internal/models"
)

// gatedPublisher blocks every publish until release is closed.
type gatedPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	got     []string
	err     error
}

func (g *gatedPublisher) PublishStatusChanged(_ context.Context, evt models.OrderStatusChanged) error {
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.got = append(g.got, evt.OrderID)
	return g.err
}

func (g *gatedPublisher) published() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.got...)
}

func TestAsync_DoesNotWaitForBroker(t *testing.T) {
	next := &gatedPublisher{release: make(chan struct{})}
	a := NewAsync(next, 4, time.Second, zap.NewNop())

	start := time.Now()
	for _, id := range []string{"o1", "o2", "o3"} {
		require.NoError(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: id}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Empty(t, next.published())

	close(next.release)
	require.NoError(t, a.Close())
	assert.Equal(t, []string{"o1", "o2", "o3"}, next.published())
}

func TestAsync_FullAndClosed(t *testing.T) {
	next := &gatedPublisher{release: make(chan struct{})}
	a := NewAsync(next, 1, time.Second, zap.NewNop())

	// the worker takes the first event and blocks; the second fills the buffer
	require.NoError(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: "o1"}))
	assert.Eventually(t, func() bool { return len(a.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: "o2"}))
	assert.ErrorIs(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: "o3"}), ErrQueueFull)

	close(next.release)
	require.NoError(t, a.Close())
	assert.ErrorIs(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: "o4"}), ErrQueueClosed)
	assert.NoError(t, a.Close())
}

func TestAsync_ForwardErrorsAreLogged(t *testing.T) {
	next := &gatedPublisher{release: make(chan struct{}), err: errors.New("broker down")}
	close(next.release)
	a := NewAsync(next, 1, time.Second, zap.NewNop())

	require.NoError(t, a.PublishStatusChanged(context.Background(), models.OrderStatusChanged{OrderID: "o1"}))
	require.NoError(t, a.Close())
	assert.Equal(t, []string{"o1"}, next.published())
}
