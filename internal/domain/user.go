package domain

import (
	"errors"

	"github.com/google/uuid"
)

const displayNamePrefix = "User-"

var ErrEmptyIdentity = errors.New("identity empty")

// UserID is an anonymous, opaque per-browser-session identifier.
// It is not tied to any persistent account.
type UserID string

type User struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"display_name"`
}

// NewAnonymousUser issues a fresh identity with a derived display name.
func NewAnonymousUser() *User {
	id := UserID(uuid.NewString())
	return &User{ID: id, DisplayName: DisplayNameFor(id)}
}

// DisplayNameFor derives the fixed-policy display name from the tail of
// the identity string. Not user-editable.
func DisplayNameFor(id UserID) string {
	tail := string(id)
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	return displayNamePrefix + tail
}
