package domain

type (
	UserID string
	ConnID string
	RoomID string
)

// Participant is one connected user inside a call room. ConnID routes messages
// to that specific connection and maps an abrupt disconnect back to the room.
type Participant struct {
	UserID UserID
	Role   Role
	ConnID ConnID
}
