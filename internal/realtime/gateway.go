package realtime

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxFrameSize = 4096

// GatewayConfig tunes per-connection resources.
type GatewayConfig struct {
	SendBuffer   int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func (c GatewayConfig) withDefaults() GatewayConfig {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 32
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

// Gateway accepts websocket clients and bridges them to the presence registry.
// Each connection runs one reader (this handler) and one writer goroutine.
type Gateway struct {
	registry *Registry
	cfg      GatewayConfig
	logger   *zap.Logger
}

// NewGateway creates a new Gateway.
func NewGateway(registry *Registry, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	return &Gateway{registry: registry, cfg: cfg.withDefaults(), logger: logger}
}

// RegisterRoutes mounts the websocket endpoint at /ws.
func (g *Gateway) RegisterRoutes(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(g.serve))
}

func (g *Gateway) serve(ws *websocket.Conn) {
	conn := newWSConnection(ws, g.cfg.SendBuffer, g.cfg.WriteTimeout)
	sess := newSession(conn, g.registry, g.logger)
	log := g.logger.With(zap.String("connection_id", conn.ID()))
	log.Info("client connected")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := conn.writeLoop(g.cfg.PingInterval); err != nil {
			log.Debug("writer stopped", zap.Error(err))
		}
	}()

	pongWait := 2 * g.cfg.PingInterval
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection lost", zap.Error(err))
			}
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		if messageType != websocket.TextMessage {
			continue
		}
		if reply := sess.handle(frame); reply != nil {
			g.reply(conn, reply)
		}
	}

	rooms := sess.close()
	conn.close()
	<-writerDone
	log.Info("client disconnected", zap.Strings("rooms", rooms))
}

func (g *Gateway) reply(conn Connection, msg *Message) {
	frame, err := msg.Encode()
	if err != nil {
		g.logger.Error("failed to encode reply", zap.String("event", msg.Event), zap.Error(err))
		return
	}
	if err := conn.Send(frame); err != nil {
		g.logger.Debug("reply dropped", zap.String("connection_id", conn.ID()), zap.Error(err))
	}
}

// ReportPresence logs the connection count every interval until ctx is done.
func (g *Gateway) ReportPresence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conns, rooms := g.registry.Stats()
			g.logger.Info("presence", zap.Int("connections", conns), zap.Int("rooms", rooms))
		}
	}
}
