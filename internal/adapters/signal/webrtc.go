package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// The relay is stateless: SDP and ICE payloads are opaque blobs forwarded
// verbatim to the peer, never parsed. Media itself is peer-to-peer and never
// crosses this server. If the peer has not joined yet the frame is dropped;
// there is no queuing.

func (g *Gateway) relayToPeer(sess *session, v any) {
	other, ok := g.registry.Other(sess.roomID(), sess.userID)
	if !ok {
		return
	}
	peer, ok := g.peerConn(other)
	if !ok {
		return
	}
	g.sendJSON(peer, v)
}

func (g *Gateway) handleOffer(sess *session, data []byte) {
	if sess.roomID() == "" {
		g.sendError(sess.conn, "not in a room")
		return
	}
	var p struct {
		Type  string          `json:"type"`
		Offer json.RawMessage `json:"offer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad offer payload")
		return
	}
	g.relayToPeer(sess, struct {
		Type  string          `json:"type"`
		Offer json.RawMessage `json:"offer"`
	}{Type: "offer", Offer: p.Offer})
}

func (g *Gateway) handleAnswer(sess *session, data []byte) {
	if sess.roomID() == "" {
		g.sendError(sess.conn, "not in a room")
		return
	}
	var p struct {
		Type   string          `json:"type"`
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad answer payload")
		return
	}
	g.relayToPeer(sess, struct {
		Type   string          `json:"type"`
		Answer json.RawMessage `json:"answer"`
	}{Type: "answer", Answer: p.Answer})
}

// Candidates are frequent and low-value to error on, so a client that is not
// in a room gets its candidates dropped silently.
func (g *Gateway) handleCandidate(sess *session, data []byte) {
	if sess.roomID() == "" {
		return
	}
	var p struct {
		Type      string          `json:"type"`
		Candidate json.RawMessage `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad candidate payload")
		return
	}
	g.relayToPeer(sess, struct {
		Type      string          `json:"type"`
		Candidate json.RawMessage `json:"candidate"`
	}{Type: "ice_candidate", Candidate: p.Candidate})
}
