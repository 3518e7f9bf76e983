package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/telecare/signaling/internal/domain"
)

var (
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("already in this room")
)

// RoleTakenError rejects a join when a participant with the same role already
// occupies the room.
type RoleTakenError struct {
	Role domain.Role
}

func (e RoleTakenError) Error() string {
	return fmt.Sprintf("a %s is already in this call", e.Role)
}

// room holds the participants of one call in join order.
type room struct {
	participants []domain.Participant
}

// Registry is the authoritative in-memory view of which participants occupy
// which call rooms. All room state flows through it; nothing else may hold a
// divergent copy. The check-then-act join sequence runs under one lock, so two
// near-simultaneous joins cannot both observe a free slot.
//
// State lives in this process only. Calls are ephemeral and rooms are
// meaningless across a restart.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*room
	users map[domain.UserID]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomID]*room),
		users: make(map[domain.UserID]domain.RoomID),
	}
}

// CanJoin reports whether a participant with the given role could enter the
// room right now. A room that does not yet exist always permits joining.
func (r *Registry) CanJoin(roomID domain.RoomID, role domain.Role) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canJoinLocked(roomID, role)
}

func (r *Registry) canJoinLocked(roomID domain.RoomID, role domain.Role) error {
	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	if len(rm.participants) >= 2 {
		return ErrRoomFull
	}
	for _, p := range rm.participants {
		if p.Role == role {
			return RoleTakenError{Role: role}
		}
	}
	return nil
}

// IsUserPresent reports whether the user already occupies the room.
func (r *Registry) IsUserPresent(roomID domain.RoomID, userID domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return roomID != "" && r.users[userID] == roomID
}

// Join atomically re-checks presence and capacity and inserts the participant.
// The gateway calls it after awaiting the external access check, closing the
// race window that separate check and insert calls would leave open. A user id
// may occupy at most one room system-wide.
func (r *Registry) Join(roomID domain.RoomID, p domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[p.UserID]; ok {
		return ErrAlreadyInRoom
	}
	if err := r.canJoinLocked(roomID, p.Role); err != nil {
		return err
	}

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{}
		r.rooms[roomID] = rm
	}
	rm.participants = append(rm.participants, p)
	r.users[p.UserID] = roomID

	log.Info().Str("module", "app.registry").Str("room", string(roomID)).
		Str("role", string(p.Role)).Int("participants", len(rm.participants)).
		Msg("call lifecycle: participant joined")
	return nil
}

// RemoveByUser removes the participant with the given user id from the room
// and returns it so the caller can notify the peer.
func (r *Registry) RemoveByUser(roomID domain.RoomID, userID domain.UserID) (domain.Participant, bool) {
	return r.remove(roomID, func(p domain.Participant) bool { return p.UserID == userID })
}

// RemoveByConn removes the participant with the given connection id from the
// room. Used for disconnect cleanup, where the connection id is the only thing
// the caller can still trust.
func (r *Registry) RemoveByConn(roomID domain.RoomID, connID domain.ConnID) (domain.Participant, bool) {
	return r.remove(roomID, func(p domain.Participant) bool { return p.ConnID == connID })
}

func (r *Registry) remove(roomID domain.RoomID, match func(domain.Participant) bool) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Participant{}, false
	}
	for i, p := range rm.participants {
		if !match(p) {
			continue
		}
		rm.participants = append(rm.participants[:i], rm.participants[i+1:]...)
		delete(r.users, p.UserID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).
			Str("role", string(p.Role)).Msg("call lifecycle: participant left")
		if len(rm.participants) == 0 {
			delete(r.rooms, roomID)
			log.Info().Str("module", "app.registry").Str("room", string(roomID)).
				Msg("call lifecycle: room closed (empty)")
		}
		return p, true
	}
	return domain.Participant{}, false
}

// Other returns the participant in the room whose user id differs from the
// given one, or false if the room has no second occupant.
func (r *Registry) Other(roomID domain.RoomID, userID domain.UserID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.Participant{}, false
	}
	for _, p := range rm.participants {
		if p.UserID != userID {
			return p, true
		}
	}
	return domain.Participant{}, false
}

func (r *Registry) Count(roomID domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rm, ok := r.rooms[roomID]; ok {
		return len(rm.participants)
	}
	return 0
}
