package realtime

import "sync"

// Registry maps user ids to the live connections joined to them ("rooms") and
// tracks every open connection for global broadcasts.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Connection            // connection id -> connection
	rooms  map[string]map[string]Connection // user id -> connection id -> connection
	joined map[string]map[string]struct{}   // connection id -> user ids
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]Connection),
		rooms:  make(map[string]map[string]Connection),
		joined: make(map[string]map[string]struct{}),
	}
}

// Register tracks conn as open. It receives global broadcasts from now on.
func (r *Registry) Register(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID()] = conn
}

// Join adds conn to the room of userID. Joining twice is a no-op.
func (r *Registry) Join(userID string, conn Connection) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	r.conns[id] = conn
	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[string]Connection)
		r.rooms[userID] = room
	}
	room[id] = conn

	users, ok := r.joined[id]
	if !ok {
		users = make(map[string]struct{})
		r.joined[id] = users
	}
	users[userID] = struct{}{}
}

// Leave removes conn from the room of userID. Leaving a room the connection
// is not in is a no-op.
func (r *Registry) Leave(userID string, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(userID, conn.ID())
}

func (r *Registry) leaveLocked(userID, connID string) {
	if room, ok := r.rooms[userID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, userID)
		}
	}
	if users, ok := r.joined[connID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(r.joined, connID)
		}
	}
}

// Disconnect forgets conn entirely and returns the rooms it was removed from.
func (r *Registry) Disconnect(conn Connection) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	var left []string
	for userID := range r.joined[id] {
		left = append(left, userID)
	}
	for _, userID := range left {
		r.leaveLocked(userID, id)
	}
	delete(r.conns, id)
	return left
}

// ConnectionsFor returns a snapshot of the connections joined to userID.
// The snapshot may be stale by the time it is used.
func (r *Registry) ConnectionsFor(userID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[userID]
	out := make([]Connection, 0, len(room))
	for _, conn := range room {
		out = append(out, conn)
	}
	return out
}

// All returns a snapshot of every open connection.
func (r *Registry) All() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

// RoomsOf returns the user ids conn has joined.
func (r *Registry) RoomsOf(conn Connection) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := r.joined[conn.ID()]
	out := make([]string, 0, len(users))
	for userID := range users {
		out = append(out, userID)
	}
	return out
}

// Stats reports the number of open connections and non-empty rooms.
func (r *Registry) Stats() (connections, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns), len(r.rooms)
}
