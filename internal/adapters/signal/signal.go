// Package signal implements the per-connection signaling protocol for video
// calls: handshake authentication, room membership, and the offer/answer/ICE
// relay between the two participants of an appointment.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/telecare/signaling/internal/app"
	"github.com/telecare/signaling/internal/auth"
)

var ErrBackpressure = errors.New("backpressure")

// Conn is the transport underneath the gateway. Handlers and tests never
// touch the websocket directly.
type Conn interface {
	TrySend(data []byte) error
	Close()
}

type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Gateway owns every live signaling connection. All room mutation funnels
// through the injected registry; access decisions are delegated to the
// checker and awaited without holding any lock.
type Gateway struct {
	registry *app.Registry
	access   app.AccessChecker
	tokens   *auth.Decoder
	sessions *sessionTable
	joins    *JoinRateLimiter

	readLimit  int64
	pingPeriod time.Duration
}

func NewGateway(registry *app.Registry, access app.AccessChecker, tokens *auth.Decoder, readLimit int64, pingPeriod time.Duration) *Gateway {
	return &Gateway{
		registry:   registry,
		access:     access,
		tokens:     tokens,
		sessions:   newSessionTable(),
		joins:      NewJoinRateLimiter(8, 10*time.Second),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal authenticates and upgrades one signaling connection.
// Authentication failure is terminal: the connection is rejected outright,
// everything else later only ever produces error events.
func (g *Gateway) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		log.Warn().Str("module", "signal").Msg("connection rejected: no token provided")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication failed"})
		return
	}

	// Never log the token itself.
	identity, err := g.tokens.Decode(token)
	if err != nil {
		log.Warn().Str("module", "signal").Msg("connection rejected: invalid token")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication failed"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	ctx, cancel := context.WithCancel(ctx)
	sess := g.sessions.bind(identity, conn, cancel)

	log.Info().Str("module", "signal").Str("conn", string(sess.id)).
		Str("role", string(sess.role)).Msg("socket connected")

	g.sendJSON(conn, map[string]any{
		"type":   "connected",
		"status": "ok",
		"role":   sess.role,
	})

	go g.writePump(ctx, conn)
	go g.readPump(ctx, sess, conn)
}
