package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1", 8)

	r.Join("u1", conn)
	r.Join("u1", conn)

	assert.Len(t, r.ConnectionsFor("u1"), 1)
	conns, rooms := r.Stats()
	assert.Equal(t, 1, conns)
	assert.Equal(t, 1, rooms)
}

func TestRegistry_MultipleDevices(t *testing.T) {
	r := NewRegistry()
	phone := newFakeConn("phone", 8)
	laptop := newFakeConn("laptop", 8)

	r.Join("u1", phone)
	r.Join("u1", laptop)
	assert.Len(t, r.ConnectionsFor("u1"), 2)

	r.Leave("u1", phone)
	remaining := r.ConnectionsFor("u1")
	assert.Len(t, remaining, 1)
	assert.Equal(t, "laptop", remaining[0].ID())
}

func TestRegistry_LeaveUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1", 8)

	r.Leave("ghost", conn)
	r.Join("u1", conn)
	r.Leave("u2", conn)

	assert.Len(t, r.ConnectionsFor("u1"), 1)
	assert.Empty(t, r.ConnectionsFor("ghost"))
}

func TestRegistry_DisconnectLeavesEveryRoom(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("c1", 8)
	other := newFakeConn("c2", 8)
	r.Register(conn)
	r.Join("u1", conn)
	r.Join("u2", conn)
	r.Join("u1", other)

	left := r.Disconnect(conn)

	assert.ElementsMatch(t, []string{"u1", "u2"}, left)
	assert.Empty(t, r.ConnectionsFor("u2"))
	assert.Len(t, r.ConnectionsFor("u1"), 1)
	assert.Empty(t, r.RoomsOf(conn))
	assert.Len(t, r.All(), 1)

	assert.Empty(t, r.Disconnect(conn))
}

func TestRegistry_EmptyUserIgnored(t *testing.T) {
	r := NewRegistry()
	r.Join("", newFakeConn("c1", 1))

	conns, rooms := r.Stats()
	assert.Equal(t, 0, conns)
	assert.Equal(t, 0, rooms)
}

func TestRegistry_ConcurrentMembership(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		conn := newFakeConn(fmt.Sprintf("c%d", i), 1)
		user := fmt.Sprintf("u%d", i%10)
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Join(user, conn)
			if i%2 == 0 {
				r.Leave(user, conn)
			}
		}()
		go func() {
			defer wg.Done()
			_ = r.ConnectionsFor(user)
			_ = r.All()
		}()
	}
	wg.Wait()

	total := 0
	for i := 0; i < 10; i++ {
		total += len(r.ConnectionsFor(fmt.Sprintf("u%d", i)))
	}
	assert.Equal(t, 100, total)
}
