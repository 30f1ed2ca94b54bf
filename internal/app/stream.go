package app

import (
	"context"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
	"github.com/lofiflow/lounge/internal/store"
)

// MessageStream exposes a room's ordered message collection to the core.
type MessageStream struct {
	backend store.Backend
}

var _ core.Stream = (*MessageStream)(nil)

func NewMessageStream(backend store.Backend) *MessageStream {
	return &MessageStream{backend: backend}
}

func (m *MessageStream) Append(ctx context.Context, code domain.RoomCode, msg domain.Message) (domain.Message, error) {
	return m.backend.AppendMessage(ctx, code, msg)
}

func (m *MessageStream) Watch(ctx context.Context, code domain.RoomCode, fn func([]domain.Message)) (core.CancelFunc, error) {
	cancel, err := m.backend.WatchMessages(ctx, code, fn)
	if err != nil {
		return nil, err
	}
	return core.CancelFunc(cancel), nil
}
