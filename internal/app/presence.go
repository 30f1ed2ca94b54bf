package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
	"github.com/lofiflow/lounge/internal/store"
)

// PresenceTracker maintains ephemeral per-occupant records and the live
// count. Presence is telemetry, not a gate: every failure is logged and
// swallowed so chat keeps working without it.
type PresenceTracker struct {
	backend store.Backend
}

var _ core.Presence = (*PresenceTracker)(nil)

func NewPresenceTracker(backend store.Backend) *PresenceTracker {
	return &PresenceTracker{backend: backend}
}

// Register upserts the occupant's record; registering twice for the same
// identity leaves a single record.
func (t *PresenceTracker) Register(ctx context.Context, code domain.RoomCode, user *domain.User) {
	if err := t.backend.PutPresence(ctx, code, domain.NewPresence(code, user)); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("room", string(code)).Str("user", string(user.ID)).Msg("presence register failed")
	}
}

func (t *PresenceTracker) Unregister(ctx context.Context, code domain.RoomCode, id domain.UserID) {
	if err := t.backend.DeletePresence(ctx, code, id); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("room", string(code)).Str("user", string(id)).Msg("presence unregister failed")
	}
}

// WatchCount subscribes to the live occupant count. On failure it logs
// and returns a no-op cancel; the consumer simply sees no updates.
func (t *PresenceTracker) WatchCount(ctx context.Context, code domain.RoomCode, fn func(int)) core.CancelFunc {
	cancel, err := t.backend.WatchPresenceCount(ctx, code, fn)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Str("room", string(code)).Msg("presence watch failed")
		return func() {}
	}
	return core.CancelFunc(cancel)
}
