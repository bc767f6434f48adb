package realtime

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Broadcaster pushes events to live connections. Delivery is best-effort:
// every send is attempted once and a full or closed connection just misses the frame.
type Broadcaster struct {
	registry  *Registry
	logger    *zap.Logger
	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewBroadcaster creates a Broadcaster over registry.
func NewBroadcaster(registry *Registry, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Push sends event to every connection joined to userID. A user without
// connections receives nothing and nothing is kept for later.
func (b *Broadcaster) Push(userID, event string, payload any) {
	conns := b.registry.ConnectionsFor(userID)
	if len(conns) == 0 {
		b.logger.Debug("no live connections for user", zap.String("user_id", userID), zap.String("event", event))
		return
	}
	b.deliver(conns, event, payload)
}

// PushGlobal sends event to every open connection regardless of user.
func (b *Broadcaster) PushGlobal(event string, payload any) {
	b.deliver(b.registry.All(), event, payload)
}

func (b *Broadcaster) deliver(conns []Connection, event string, payload any) {
	if len(conns) == 0 {
		return
	}
	frame, err := Message{Event: event, Data: payload}.Encode()
	if err != nil {
		b.logger.Error("failed to encode frame", zap.String("event", event), zap.Error(err))
		return
	}

	for _, conn := range conns {
		if !conn.Open() {
			b.drop(conn, event, ErrConnectionClosed)
			continue
		}
		if err := conn.Send(frame); err != nil {
			b.drop(conn, event, err)
			continue
		}
		b.delivered.Add(1)
	}
}

func (b *Broadcaster) drop(conn Connection, event string, reason error) {
	b.dropped.Add(1)
	b.logger.Debug("delivery dropped",
		zap.String("connection_id", conn.ID()),
		zap.String("event", event),
		zap.Error(reason))
}

// Stats reports how many frames were handed to connections and how many were dropped.
func (b *Broadcaster) Stats() (delivered, dropped int64) {
	return b.delivered.Load(), b.dropped.Load()
}
