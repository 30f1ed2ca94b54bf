// Package store implements the document backend the chat core syncs
// against: point reads, insert-if-absent room records, append-to-ordered
// message collections, ephemeral presence records, and live snapshot
// subscriptions over all of it.
package store

import (
	"context"
	"errors"

	"github.com/lofiflow/lounge/internal/domain"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrClosed       = errors.New("store closed")
)

// CancelFunc tears down a live subscription. Safe to call more than once.
type CancelFunc func()

// Backend is the full primitive surface the session layer depends on.
// Any store with point lookup, best-effort insert-if-absent, ordered live
// subscription and per-key upsert/delete can satisfy it.
type Backend interface {
	GetRoom(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	CreateRoom(ctx context.Context, room *domain.Room) error

	// AppendMessage assigns the server timestamp and id, then writes.
	AppendMessage(ctx context.Context, code domain.RoomCode, msg domain.Message) (domain.Message, error)
	// WatchMessages delivers the full ordered message list on subscribe
	// and again after every append. Order is creation-timestamp ascending.
	WatchMessages(ctx context.Context, code domain.RoomCode, fn func([]domain.Message)) (CancelFunc, error)

	PutPresence(ctx context.Context, code domain.RoomCode, p domain.Presence) error
	DeletePresence(ctx context.Context, code domain.RoomCode, id domain.UserID) error
	// WatchPresenceCount delivers the current record count on subscribe
	// and after every presence insert or delete.
	WatchPresenceCount(ctx context.Context, code domain.RoomCode, fn func(int)) (CancelFunc, error)

	Close() error
}
