package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
	"github.com/lofiflow/lounge/internal/store"
)

func openBackend(t *testing.T) store.Backend {
	t.Helper()
	p, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// fixedCodes makes the generator deterministic for collision tests.
func fixedCodes(codes ...domain.RoomCode) func() domain.RoomCode {
	i := 0
	return func() domain.RoomCode {
		code := codes[i%len(codes)]
		i++
		return code
	}
}

func TestLookupMapsNotFound(t *testing.T) {
	d := NewRoomDirectory(openBackend(t))
	_, err := d.Lookup(context.Background(), "ZZZZZZ")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateFreshRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)
	d := NewRoomDirectory(backend)

	// First two candidate codes are taken, third is free.
	for _, code := range []domain.RoomCode{"AAAAAA", "BBBBBB"} {
		room, err := domain.NewRoom(code, "", "other")
		require.NoError(t, err)
		require.NoError(t, backend.CreateRoom(ctx, room))
	}
	d.generate = fixedCodes("AAAAAA", "BBBBBB", "CCCCCC")

	room, err := d.CreateFresh(ctx, "creator")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("CCCCCC"), room.Code)
	assert.Equal(t, domain.UserID("creator"), room.CreatedBy)

	stored, err := d.Lookup(ctx, "CCCCCC")
	require.NoError(t, err)
	assert.Equal(t, room.Code, stored.Code)
}

func TestCreateFreshExhaustsAfterFiveCollisions(t *testing.T) {
	ctx := context.Background()
	backend := openBackend(t)
	d := NewRoomDirectory(backend)

	room, err := domain.NewRoom("AAAAAA", "", "other")
	require.NoError(t, err)
	require.NoError(t, backend.CreateRoom(ctx, room))

	// Every attempt lands on the taken code.
	d.generate = fixedCodes("AAAAAA")

	_, err = d.CreateFresh(ctx, "creator")
	require.ErrorIs(t, err, core.ErrCodeExhausted)

	// No partial record was written under any other code either; the
	// only room in the directory is the pre-existing one.
	got, err := d.Lookup(ctx, "AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("other"), got.CreatedBy)
}

func TestRegistryIdentityStable(t *testing.T) {
	r := NewRegistry()
	first := r.GetOrCreateUser("token-1")
	again := r.GetOrCreateUser("token-1")
	other := r.GetOrCreateUser("token-2")

	assert.Same(t, first, again)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, domain.DisplayNameFor(first.ID), first.DisplayName)
}
