package realtime

import (
	"encoding/json"
	"errors"
)

var (
	// ErrSendBufferFull is returned when a connection cannot take another frame right now.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrConnectionClosed is returned when sending on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is a live client handle. Send must never block.
type Connection interface {
	ID() string
	Send(frame []byte) error
	Open() bool
}

// Message is the frame exchanged over the real-time channel.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Encode serializes m as a JSON text frame.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// inboundMessage is a client frame with its payload left undecoded.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
