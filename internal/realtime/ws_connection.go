package realtime

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// wsConnection adapts a websocket to Connection. Frames queue in a bounded
// buffer drained by a single writer goroutine.
type wsConnection struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func newWSConnection(ws *websocket.Conn, buffer int, writeTimeout time.Duration) *wsConnection {
	return &wsConnection{
		id:           uuid.New().String(),
		ws:           ws,
		send:         make(chan []byte, buffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

func (c *wsConnection) ID() string { return c.id }

func (c *wsConnection) Open() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Send queues frame without blocking.
func (c *wsConnection) Send(frame []byte) error {
	if !c.Open() {
		return ErrConnectionClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *wsConnection) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writeLoop drains the send buffer and keeps the connection alive with pings
// until the connection closes or a write fails.
func (c *wsConnection) writeLoop(pingInterval time.Duration) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			if err := c.write(websocket.TextMessage, frame); err != nil {
				c.close()
				return err
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.close()
				return err
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}

func (c *wsConnection) write(messageType int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}
