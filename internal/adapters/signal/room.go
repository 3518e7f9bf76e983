package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/telecare/signaling/internal/app"
	"github.com/telecare/signaling/internal/domain"
)

// peerConn resolves a participant to its live connection, if it still has one.
func (g *Gateway) peerConn(p domain.Participant) (Conn, bool) {
	if s, ok := g.sessions.get(p.ConnID); ok {
		return s.conn, true
	}
	return nil, false
}

func (g *Gateway) handleJoinRoom(ctx context.Context, sess *session, data []byte) {
	type joinPayload struct {
		Type          string `json:"type"`
		AppointmentID string `json:"appointmentId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(sess.id)).Msg("bad join payload")
		return
	}
	if p.AppointmentID == "" {
		g.sendError(sess.conn, "appointment id required")
		return
	}
	if sess.roomID() != "" {
		g.sendError(sess.conn, app.ErrAlreadyInRoom.Error())
		return
	}
	if !g.joins.Allow(sess.userID) {
		g.sendError(sess.conn, "too many join attempts")
		return
	}

	appointmentID := domain.AppointmentID(p.AppointmentID)

	// The access check may hit the database; no registry lock is held across
	// it, so membership gets re-checked atomically inside Join below.
	if _, err := g.access.Validate(ctx, sess.userID, sess.role, appointmentID); err != nil {
		switch {
		case errors.Is(err, app.ErrAppointmentNotFound),
			errors.Is(err, app.ErrAppointmentNotConfirmed),
			errors.Is(err, app.ErrNotAuthorized),
			errors.Is(err, app.ErrDoctorProfileNotFound):
			g.sendError(sess.conn, err.Error())
		default:
			log.Error().Err(err).Str("module", "signal").Str("appointment", p.AppointmentID).
				Msg("access check failed")
			g.sendError(sess.conn, "internal error validating access")
		}
		return
	}

	// The connection may have dropped while the check was in flight; leave no
	// half-joined state behind.
	if ctx.Err() != nil {
		return
	}

	roomID := appointmentID.CallRoomID()
	err := g.registry.Join(roomID, domain.Participant{
		UserID: sess.userID,
		Role:   sess.role,
		ConnID: sess.id,
	})
	if err != nil {
		g.sendError(sess.conn, err.Error())
		return
	}
	sess.setRoom(roomID)

	other, hasPeer := g.registry.Other(roomID, sess.userID)

	// The newer joiner always initiates the WebRTC offer; a deterministic
	// tie-break keeps both sides from racing to offer.
	g.sendJSON(sess.conn, map[string]any{
		"type":              "room_joined",
		"room":              roomID,
		"role":              sess.role,
		"peerConnected":     hasPeer,
		"shouldCreateOffer": hasPeer,
	})

	if hasPeer {
		if peer, ok := g.peerConn(other); ok {
			g.sendJSON(peer, map[string]any{
				"type": "peer_joined",
				"role": sess.role,
			})
		}
	}

	log.Info().Str("module", "signal").Str("room", string(roomID)).
		Str("role", string(sess.role)).Int("participants", g.registry.Count(roomID)).
		Msg("call lifecycle: joined room")
}

func (g *Gateway) handleCallEnd(sess *session) {
	roomID := sess.roomID()
	if roomID == "" {
		g.sendError(sess.conn, "not in a room")
		return
	}

	// Notify the peer before leaving.
	if other, ok := g.registry.Other(roomID, sess.userID); ok {
		if peer, ok := g.peerConn(other); ok {
			g.sendJSON(peer, map[string]any{
				"type":    "call_ended",
				"endedBy": sess.role,
			})
		}
	}

	g.registry.RemoveByUser(roomID, sess.userID)
	sess.clearRoom()

	g.sendJSON(sess.conn, map[string]any{
		"type":    "call_ended",
		"endedBy": "self",
	})

	log.Info().Str("module", "signal").Str("room", string(roomID)).
		Str("role", string(sess.role)).Msg("call lifecycle: ended call")
}

// handleDisconnect fires for any connection loss, whatever state the session
// was in. The session record is always discarded.
func (g *Gateway) handleDisconnect(sess *session) {
	g.sessions.remove(sess.id)

	roomID := sess.roomID()
	if roomID == "" {
		return
	}

	removed, ok := g.registry.RemoveByConn(roomID, sess.id)
	if !ok {
		return
	}
	if other, stillThere := g.registry.Other(roomID, sess.userID); stillThere {
		if peer, ok := g.peerConn(other); ok {
			g.sendJSON(peer, map[string]any{
				"type": "peer_disconnected",
				"role": removed.Role,
			})
		}
	}

	log.Info().Str("module", "signal").Str("room", string(roomID)).
		Str("role", string(removed.Role)).Msg("call lifecycle: disconnected from room")
}
