package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
	"github.com/lofiflow/lounge/internal/store"
)

// createAttempts bounds the fresh-code retry loop. The 36^6 keyspace
// makes collisions rare; five tries bounds the blast radius.
const createAttempts = 5

// RoomDirectory resolves and allocates room records keyed by code.
type RoomDirectory struct {
	backend  store.Backend
	generate func() domain.RoomCode
}

var _ core.Directory = (*RoomDirectory)(nil)

func NewRoomDirectory(backend store.Backend) *RoomDirectory {
	return &RoomDirectory{backend: backend, generate: domain.NewRoomCode}
}

func (d *RoomDirectory) Lookup(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	room, err := d.backend.GetRoom(ctx, code)
	if errors.Is(err, store.ErrRoomNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup room %s: %w", code, err)
	}
	return room, nil
}

// CreateFresh allocates a room under a newly generated code. The
// check-then-insert is not atomic across backends; a same-code loser
// just regenerates and tries again.
func (d *RoomDirectory) CreateFresh(ctx context.Context, creator domain.UserID) (*domain.Room, error) {
	for i := 0; i < createAttempts; i++ {
		code := d.generate()
		_, err := d.backend.GetRoom(ctx, code)
		if err == nil {
			log.Warn().Str("module", "app.directory").Str("code", string(code)).Int("attempt", i+1).Msg("code collision, regenerating")
			continue
		}
		if !errors.Is(err, store.ErrRoomNotFound) {
			return nil, fmt.Errorf("check code %s: %w", code, err)
		}
		room, err := domain.NewRoom(code, "", creator)
		if err != nil {
			return nil, err
		}
		if err := d.backend.CreateRoom(ctx, room); err != nil {
			if errors.Is(err, store.ErrRoomExists) {
				log.Warn().Str("module", "app.directory").Str("code", string(code)).Int("attempt", i+1).Msg("lost create race, regenerating")
				continue
			}
			return nil, fmt.Errorf("create room %s: %w", code, err)
		}
		return room, nil
	}
	return nil, core.ErrCodeExhausted
}
