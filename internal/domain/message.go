package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyMessage   = errors.New("message text empty")
	ErrMalformedEntry = errors.New("malformed stored entry")
)

// Message is immutable once appended. CreatedAt is assigned by the store,
// never by the caller, so ordering stays consistent across senders.
type Message struct {
	ID          string    `json:"id"`
	Room        RoomCode  `json:"room"`
	AuthorID    UserID    `json:"author_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	System      bool      `json:"system,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMessage trims and validates user input before it reaches the store.
func NewMessage(room RoomCode, author *User, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if author == nil || author.ID == "" {
		return Message{}, ErrEmptyIdentity
	}
	return Message{
		Room:        room,
		AuthorID:    author.ID,
		DisplayName: author.DisplayName,
		Text:        text,
	}, nil
}

// NewSystemMessage builds a room announcement (joins, leaves).
func NewSystemMessage(room RoomCode, text string) Message {
	return Message{
		Room:        room,
		AuthorID:    SystemAuthorID,
		DisplayName: SystemAuthorTag,
		Text:        text,
		System:      true,
	}
}

// Validate guards the read boundary: records loaded from the store are
// rejected instead of propagating half-empty fields.
func (m Message) Validate() error {
	if m.Text == "" || m.AuthorID == "" || m.CreatedAt.IsZero() {
		return ErrMalformedEntry
	}
	return nil
}
