package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroadcaster_PushReachesEveryConnectionOfUser(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zap.NewNop())
	phone := newFakeConn("phone", 8)
	laptop := newFakeConn("laptop", 8)
	stranger := newFakeConn("stranger", 8)
	r.Join("u1", phone)
	r.Join("u1", laptop)
	r.Join("u2", stranger)

	b.Push("u1", "notification", map[string]string{"title": "hi"})

	for _, conn := range []*fakeConn{phone, laptop} {
		msgs := conn.received(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, "notification", msgs[0].Event)
		assert.JSONEq(t, `{"title":"hi"}`, string(msgs[0].Data))
	}
	assert.Empty(t, stranger.received(t))
}

func TestBroadcaster_SlowOrDeadConnectionDoesNotBlockOthers(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zap.NewNop())
	full := newFakeConn("full", 0)
	dead := newFakeConn("dead", 8)
	dead.close()
	healthy := newFakeConn("healthy", 8)
	r.Join("u1", full)
	r.Join("u1", dead)
	r.Join("u1", healthy)

	b.Push("u1", "notification", 1)
	b.Push("u1", "notification", 2)

	msgs := healthy.received(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, json.RawMessage("1"), msgs[0].Data)
	assert.Equal(t, json.RawMessage("2"), msgs[1].Data)

	delivered, dropped := b.Stats()
	assert.Equal(t, int64(2), delivered)
	assert.Equal(t, int64(4), dropped)
}

func TestBroadcaster_PushWithoutConnections(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zap.NewNop())

	assert.NotPanics(t, func() { b.Push("offline", "notification", "x") })

	delivered, dropped := b.Stats()
	assert.Zero(t, delivered)
	assert.Zero(t, dropped)
	conns, rooms := r.Stats()
	assert.Zero(t, conns)
	assert.Zero(t, rooms)
}

func TestBroadcaster_PushGlobalIgnoresRooms(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zap.NewNop())
	anonymous := newFakeConn("anon", 8)
	member := newFakeConn("member", 8)
	r.Register(anonymous)
	r.Join("u1", member)

	b.PushGlobal("orderUpdated", []map[string]string{{"orderId": "o1", "status": "Shipped"}})

	for _, conn := range []*fakeConn{anonymous, member} {
		msgs := conn.received(t)
		require.Len(t, msgs, 1)
		assert.Equal(t, "orderUpdated", msgs[0].Event)
		assert.JSONEq(t, `[{"orderId":"o1","status":"Shipped"}]`, string(msgs[0].Data))
	}
}

func TestBroadcaster_UnencodablePayloadIsDropped(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, zap.NewNop())
	conn := newFakeConn("c", 8)
	r.Join("u", conn)

	b.Push("u", "notification", make(chan int))

	assert.Empty(t, conn.received(t))
}
