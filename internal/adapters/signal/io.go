package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Time allowed to write a single frame.
const writeWait = 5 * time.Second

// pongWait must exceed the ping period or healthy peers get timed out.
func (g *Gateway) pongWait() time.Duration {
	return g.pingPeriod * 10 / 9
}

func (g *Gateway) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(g.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) readPump(ctx context.Context, sess *session, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump closing")
		g.handleDisconnect(sess)
		sess.cancel()
		c.Close()
	}()

	c.conn.SetReadLimit(g.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(g.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(g.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(sess.id)).Msg("readPump read error")
			}
			return
		}
		g.handleEvent(ctx, sess, data)
	}
}

// handleEvent dispatches one client frame. Malformed frames are dropped, not
// propagated; a broken client must never take the connection down.
func (g *Gateway) handleEvent(ctx context.Context, sess *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Msg("dropping malformed frame")
		return
	}

	switch env.Type {
	case "join_room":
		g.handleJoinRoom(ctx, sess, data)
	case "offer":
		g.handleOffer(sess, data)
	case "answer":
		g.handleAnswer(sess, data)
	case "ice_candidate":
		g.handleCandidate(sess, data)
	case "call_end":
		g.handleCallEnd(sess)
	case "ping":
		g.sendJSON(sess.conn, map[string]any{"type": "pong"})
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (g *Gateway) sendJSON(c Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("frame dropped")
	}
}

// sendError surfaces a recoverable failure to the offending connection only.
func (g *Gateway) sendError(c Conn, msg string) {
	g.sendJSON(c, map[string]any{
		"type":    "error",
		"message": msg,
	})
}
