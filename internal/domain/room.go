// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	RoomCodeLength  = 6
	MaxRoomNameLen  = 36
	codeAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	SystemAuthorID  = UserID("system")
	SystemAuthorTag = "System"
)

var (
	ErrEmptyCode    = errors.New("room code empty")
	ErrRoomNameLong = errors.New("room name too long")
)

// RoomCode is the short human-shareable identifier, always upper-case.
type RoomCode string

type RoomName string

// Room is a code-addressable chat channel. The code doubles as the
// directory key; uniqueness is best-effort at creation time.
type Room struct {
	Code      RoomCode  `json:"code"`
	Name      RoomName  `json:"name"`
	CreatedBy UserID    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoom(code RoomCode, name RoomName, creator UserID) (*Room, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if name == "" {
		name = RoomName("Room " + string(code))
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameLong
	}
	return &Room{
		Code:      code,
		Name:      name,
		CreatedBy: creator,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ParseRoomCode normalizes user input: trim, upper-case, reject empty.
// Anything else is accepted and simply misses on lookup.
func ParseRoomCode(raw string) (RoomCode, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", ErrEmptyCode
	}
	return RoomCode(code), nil
}
