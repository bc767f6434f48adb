package realtime

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// Control events understood by the gateway.
const (
	EventJoin   = "join"
	EventJoined = "joined"
	EventLeave  = "leave"
	EventLeft   = "left"
	EventError  = "error"
)

// JoinAck acknowledges a join.
type JoinAck struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

type errorBody struct {
	Message string `json:"message"`
}

// session holds the control state of one open connection. A connection belongs
// to at most one user; a second join replaces the first.
type session struct {
	conn     Connection
	registry *Registry
	logger   *zap.Logger
	userID   string
}

func newSession(conn Connection, registry *Registry, logger *zap.Logger) *session {
	registry.Register(conn)
	return &session{conn: conn, registry: registry, logger: logger}
}

// handle applies one client frame and returns the reply to send, if any.
func (s *session) handle(frame []byte) *Message {
	var in inboundMessage
	if err := json.Unmarshal(frame, &in); err != nil {
		return errorReply("malformed frame")
	}

	switch in.Event {
	case EventJoin:
		var userID string
		if err := json.Unmarshal(in.Data, &userID); err != nil || strings.TrimSpace(userID) == "" {
			s.logger.Warn("join without user id", zap.String("connection_id", s.conn.ID()))
			return errorReply("join requires a user id")
		}
		return s.join(userID)
	case EventLeave:
		return s.leave()
	default:
		return errorReply("unknown event " + in.Event)
	}
}

func (s *session) join(userID string) *Message {
	if s.userID != "" && s.userID != userID {
		s.registry.Leave(s.userID, s.conn)
	}
	s.registry.Join(userID, s.conn)
	s.userID = userID
	s.logger.Info("connection joined room",
		zap.String("connection_id", s.conn.ID()),
		zap.String("user_id", userID))
	return &Message{Event: EventJoined, Data: JoinAck{UserID: userID, ConnectionID: s.conn.ID()}}
}

func (s *session) leave() *Message {
	if s.userID == "" {
		return &Message{Event: EventLeft, Data: JoinAck{ConnectionID: s.conn.ID()}}
	}
	left := s.userID
	s.registry.Leave(left, s.conn)
	s.userID = ""
	return &Message{Event: EventLeft, Data: JoinAck{UserID: left, ConnectionID: s.conn.ID()}}
}

// close removes the connection from every room it joined, even without an explicit leave.
func (s *session) close() []string {
	s.userID = ""
	return s.registry.Disconnect(s.conn)
}

func errorReply(msg string) *Message {
	return &Message{Event: EventError, Data: errorBody{Message: msg}}
}
