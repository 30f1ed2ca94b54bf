package core

import (
	"context"

	"github.com/lofiflow/lounge/internal/domain"
)

// CancelFunc tears down a live subscription; idempotent.
type CancelFunc func()

// Directory resolves and allocates room records keyed by code.
type Directory interface {
	// Lookup is a point read. Missing code -> ErrNotFound.
	Lookup(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	// CreateFresh allocates a room under a newly generated code,
	// retrying on collision. Exhaustion -> ErrCodeExhausted.
	CreateFresh(ctx context.Context, creator domain.UserID) (*domain.Room, error)
}

// Stream is the room's ordered message collection.
type Stream interface {
	Append(ctx context.Context, code domain.RoomCode, msg domain.Message) (domain.Message, error)
	// Watch delivers the full current ordered list on every update.
	Watch(ctx context.Context, code domain.RoomCode, fn func([]domain.Message)) (CancelFunc, error)
}

// Presence is best-effort occupancy telemetry. Implementations log and
// swallow failures; nothing here may block chat.
type Presence interface {
	Register(ctx context.Context, code domain.RoomCode, user *domain.User)
	Unregister(ctx context.Context, code domain.RoomCode, id domain.UserID)
	WatchCount(ctx context.Context, code domain.RoomCode, fn func(int)) CancelFunc
}
