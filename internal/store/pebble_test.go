package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lofiflow/lounge/internal/domain"
)

func openTestStore(t *testing.T) *Pebble {
	t.Helper()
	p, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func mustRoom(t *testing.T, code domain.RoomCode) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom(code, "", "creator")
	require.NoError(t, err)
	return room
}

func TestCreateRoomInsertIfAbsent(t *testing.T) {
	p := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, p.CreateRoom(ctx, mustRoom(t, "AB12CD")))
	require.ErrorIs(t, p.CreateRoom(ctx, mustRoom(t, "AB12CD")), ErrRoomExists)

	room, err := p.GetRoom(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("AB12CD"), room.Code)

	_, err = p.GetRoom(ctx, "ZZZZZZ")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAppendMessageAssignsOrder(t *testing.T) {
	p := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, p.CreateRoom(ctx, mustRoom(t, "AB12CD")))

	user := &domain.User{ID: "u-1", DisplayName: "User-0001"}
	for _, text := range []string{"first", "second", "third"} {
		msg, err := domain.NewMessage("AB12CD", user, text)
		require.NoError(t, err)
		stored, err := p.AppendMessage(ctx, "AB12CD", msg)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.False(t, stored.CreatedAt.IsZero())
	}

	msgs, err := p.Messages("AB12CD")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, "third", msgs[2].Text)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt), "timestamps must be non-decreasing")
	}
}

// Rapid sends land in key order even when nanosecond timestamps tie; the
// sequence suffix keeps the total order consistent with timestamps.
func TestAppendMessageRapidSuccession(t *testing.T) {
	p := openTestStore(t)
	ctx := context.Background()
	user := &domain.User{ID: "u-1", DisplayName: "User-0001"}

	const n = 50
	for i := 0; i < n; i++ {
		msg, err := domain.NewMessage("AB12CD", user, "msg")
		require.NoError(t, err)
		_, err = p.AppendMessage(ctx, "AB12CD", msg)
		require.NoError(t, err)
	}
	msgs, err := p.Messages("AB12CD")
	require.NoError(t, err)
	require.Len(t, msgs, n)
	for i := 1; i < n; i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestWatchMessagesDeliversSnapshots(t *testing.T) {
	p := openTestStore(t)
	ctx := context.Background()
	user := &domain.User{ID: "u-1", DisplayName: "User-0001"}

	var mu sync.Mutex
	var last []domain.Message
	deliveries := make(chan int, 16)
	cancel, err := p.WatchMessages(ctx, "AB12CD", func(msgs []domain.Message) {
		mu.Lock()
		last = msgs
		mu.Unlock()
		deliveries <- len(msgs)
	})
	require.NoError(t, err)

	// Initial snapshot arrives without any write.
	require.Equal(t, 0, waitFor(t, deliveries))

	msg, err := domain.NewMessage("AB12CD", user, "hello")
	require.NoError(t, err)
	_, err = p.AppendMessage(ctx, "AB12CD", msg)
	require.NoError(t, err)
	require.Equal(t, 1, waitFor(t, deliveries))

	mu.Lock()
	assert.Equal(t, "hello", last[0].Text)
	mu.Unlock()

	// Cancel is idempotent and stops further deliveries.
	cancel()
	cancel()
	_, err = p.AppendMessage(ctx, "AB12CD", msg)
	require.NoError(t, err)
	select {
	case n := <-deliveries:
		t.Fatalf("delivery after cancel: %d messages", n)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPresenceUpsertAndCount(t *testing.T) {
	p := openTestStore(t)
	ctx := context.Background()
	alice := &domain.User{ID: "alice", DisplayName: "User-lice"}
	bob := &domain.User{ID: "bob", DisplayName: "User-bob"}

	counts := make(chan int, 16)
	cancel, err := p.WatchPresenceCount(ctx, "AB12CD", func(n int) { counts <- n })
	require.NoError(t, err)
	defer cancel()
	require.Equal(t, 0, waitFor(t, counts))

	require.NoError(t, p.PutPresence(ctx, "AB12CD", domain.NewPresence("AB12CD", alice)))
	require.Equal(t, 1, waitFor(t, counts))

	// Registering the same identity twice keeps a single record.
	require.NoError(t, p.PutPresence(ctx, "AB12CD", domain.NewPresence("AB12CD", alice)))
	require.Equal(t, 1, waitFor(t, counts))

	require.NoError(t, p.PutPresence(ctx, "AB12CD", domain.NewPresence("AB12CD", bob)))
	require.Equal(t, 2, waitFor(t, counts))

	require.NoError(t, p.DeletePresence(ctx, "AB12CD", alice.ID))
	require.Equal(t, 1, waitFor(t, counts))

	// Deleting a missing record is a no-op, not an error.
	require.NoError(t, p.DeletePresence(ctx, "AB12CD", alice.ID))
}

// Close must drain live watchers before releasing the database, and
// refuse new subscriptions afterwards.
func TestCloseWithLiveWatchers(t *testing.T) {
	p, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	user := &domain.User{ID: "u-1", DisplayName: "User-0001"}

	_, err = p.WatchMessages(ctx, "AB12CD", func([]domain.Message) {})
	require.NoError(t, err)
	_, err = p.WatchPresenceCount(ctx, "AB12CD", func(int) {})
	require.NoError(t, err)

	// Keep snapshots in flight while Close runs.
	for i := 0; i < 20; i++ {
		msg, err := domain.NewMessage("AB12CD", user, "msg")
		require.NoError(t, err)
		_, err = p.AppendMessage(ctx, "AB12CD", msg)
		require.NoError(t, err)
	}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.WatchMessages(ctx, "AB12CD", func([]domain.Message) {})
	require.ErrorIs(t, err, ErrClosed)
}

// waitFor drains one delivery, skipping coalesced duplicates is up to the
// caller; it fails the test after a short deadline.
func waitFor(t *testing.T, ch chan int) int {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return 0
	}
}
