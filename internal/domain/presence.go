package domain

import "time"

// Presence is an ephemeral per-occupant marker, keyed by identity within
// a room. Last write wins if the same identity registers twice. It exists
// only to feed the live occupant count; there is no heartbeat or expiry,
// so a client that dies without leaving orphans its record.
type Presence struct {
	Room        RoomCode  `json:"room"`
	UserID      UserID    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

func NewPresence(room RoomCode, user *User) Presence {
	return Presence{
		Room:        room,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		JoinedAt:    time.Now().UTC(),
	}
}
