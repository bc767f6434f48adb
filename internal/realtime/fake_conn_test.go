package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Connection with a bounded buffer.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames [][]byte
	limit  int
	closed bool
}

func newFakeConn(id string, limit int) *fakeConn {
	return &fakeConn{id: id, limit: limit}
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeConn) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrConnectionClosed
	}
	if len(f.frames) >= f.limit {
		return ErrSendBufferFull
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) received(t *testing.T) []inboundMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]inboundMessage, 0, len(f.frames))
	for _, frame := range f.frames {
		var msg inboundMessage
		require.NoError(t, json.Unmarshal(frame, &msg))
		out = append(out, msg)
	}
	return out
}
