package signal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/telecare/signaling/internal/auth"
	"github.com/telecare/signaling/internal/domain"
)

// session is the per-connection state: who is on the wire and which room, if
// any, they currently occupy. Created once the handshake authenticates,
// destroyed when the connection drops.
type session struct {
	id     domain.ConnID
	userID domain.UserID
	role   domain.Role
	conn   Conn
	cancel context.CancelFunc

	mu   sync.Mutex
	room domain.RoomID
}

func (s *session) roomID() domain.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *session) setRoom(room domain.RoomID) {
	s.mu.Lock()
	s.room = room
	s.mu.Unlock()
}

func (s *session) clearRoom() {
	s.setRoom("")
}

type sessionTable struct {
	mu       sync.RWMutex
	sessions map[domain.ConnID]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[domain.ConnID]*session)}
}

func (t *sessionTable) bind(identity auth.Identity, conn Conn, cancel context.CancelFunc) *session {
	s := &session{
		id:     domain.ConnID(uuid.NewString()),
		userID: identity.UserID,
		role:   identity.Role,
		conn:   conn,
		cancel: cancel,
	}
	t.mu.Lock()
	t.sessions[s.id] = s
	t.mu.Unlock()
	return s
}

func (t *sessionTable) get(id domain.ConnID) (*session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) remove(id domain.ConnID) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}
