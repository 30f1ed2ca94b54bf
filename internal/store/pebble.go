package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/domain"
)

// Key layout:
//
//	room:<CODE>              -> Room
//	msg:<CODE>:<ts>-<seq>    -> Message  (zero-padded, string-sorts by time)
//	prs:<CODE>:<identity>    -> Presence
type Pebble struct {
	db       *pebble.DB
	hub      *hub
	watchers sync.WaitGroup

	mu     sync.Mutex
	seq    uint64
	closed bool
}

var _ Backend = (*Pebble)(nil)

func Open(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	log.Info().Str("module", "store").Str("path", path).Msg("pebble opened")
	return &Pebble{db: db, hub: newHub()}, nil
}

func (p *Pebble) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	p.hub.closeAll()
	p.watchers.Wait()
	return p.db.Close()
}

func roomKey(code domain.RoomCode) []byte {
	return []byte("room:" + string(code))
}

func msgKey(code domain.RoomCode, id string) []byte {
	return []byte("msg:" + string(code) + ":" + id)
}

func presenceKey(code domain.RoomCode, id domain.UserID) []byte {
	return []byte("prs:" + string(code) + ":" + string(id))
}

// prefixBounds returns [prefix, successor-of-prefix) for iteration.
func prefixBounds(prefix string) ([]byte, []byte) {
	lower := []byte(prefix)
	upper := make([]byte, len(lower))
	copy(upper, lower)
	upper[len(upper)-1]++
	return lower, upper
}

func (p *Pebble) GetRoom(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, closer, err := p.db.Get(roomKey(code))
	if err == pebble.ErrNotFound {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	defer closer.Close()
	var room domain.Room
	if err := json.Unmarshal(val, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, domain.ErrMalformedEntry)
	}
	if room.Code == "" {
		return nil, fmt.Errorf("room %s: %w", code, domain.ErrMalformedEntry)
	}
	return &room, nil
}

// CreateRoom inserts the record only if the code is free. The store mutex
// spans the existence check and the write, so within this process the
// insert-if-absent is atomic; across independent backends it stays the
// documented best-effort race.
func (p *Pebble) CreateRoom(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	_, closer, err := p.db.Get(roomKey(room.Code))
	if err == nil {
		closer.Close()
		return ErrRoomExists
	}
	if err != pebble.ErrNotFound {
		return fmt.Errorf("check room %s: %w", room.Code, err)
	}
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	if err := p.db.Set(roomKey(room.Code), data, pebble.Sync); err != nil {
		return fmt.Errorf("write room %s: %w", room.Code, err)
	}
	log.Info().Str("module", "store").Str("room", string(room.Code)).Msg("room created")
	return nil
}

// AppendMessage assigns the server timestamp and a tie-breaking sequence,
// then writes under a key that sorts by creation time.
func (p *Pebble) AppendMessage(ctx context.Context, code domain.RoomCode, msg domain.Message) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.Message{}, ErrClosed
	}
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	now := time.Now().UTC()
	msg.Room = code
	msg.CreatedAt = now
	msg.ID = fmt.Sprintf("%020d-%06d", now.UnixNano(), seq)

	data, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("encode message: %w", err)
	}
	if err := p.db.Set(msgKey(code, msg.ID), data, pebble.Sync); err != nil {
		return domain.Message{}, fmt.Errorf("append message to %s: %w", code, err)
	}
	p.hub.notify(watchKey{room: code, kind: watchMessages})
	return msg, nil
}

// Messages returns the room's full ordered message list. Malformed
// entries are dropped at this boundary, not propagated.
func (p *Pebble) Messages(code domain.RoomCode) ([]domain.Message, error) {
	lower, upper := prefixBounds("msg:" + string(code) + ":")
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("iterate messages of %s: %w", code, err)
	}
	defer iter.Close()
	out := make([]domain.Message, 0, 32)
	for iter.First(); iter.Valid(); iter.Next() {
		var msg domain.Message
		if err := json.Unmarshal(iter.Value(), &msg); err != nil {
			log.Warn().Str("module", "store").Str("room", string(code)).Str("key", string(iter.Key())).Msg("dropping undecodable message")
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Warn().Str("module", "store").Str("room", string(code)).Str("key", string(iter.Key())).Msg("dropping malformed message")
			continue
		}
		out = append(out, msg)
	}
	return out, iter.Error()
}

func (p *Pebble) WatchMessages(ctx context.Context, code domain.RoomCode, fn func([]domain.Message)) (CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.watch(watchKey{room: code, kind: watchMessages}, func() {
		msgs, err := p.Messages(code)
		if err != nil {
			log.Error().Err(err).Str("module", "store").Str("room", string(code)).Msg("message snapshot failed")
			return
		}
		fn(msgs)
	})
}

func (p *Pebble) PutPresence(ctx context.Context, code domain.RoomCode, pr domain.Presence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(pr)
	if err != nil {
		return fmt.Errorf("encode presence: %w", err)
	}
	if err := p.db.Set(presenceKey(code, pr.UserID), data, pebble.Sync); err != nil {
		return fmt.Errorf("put presence in %s: %w", code, err)
	}
	p.hub.notify(watchKey{room: code, kind: watchPresence})
	return nil
}

// DeletePresence is idempotent: deleting a missing record is a no-op.
func (p *Pebble) DeletePresence(ctx context.Context, code domain.RoomCode, id domain.UserID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.db.Delete(presenceKey(code, id), pebble.Sync); err != nil {
		return fmt.Errorf("delete presence in %s: %w", code, err)
	}
	p.hub.notify(watchKey{room: code, kind: watchPresence})
	return nil
}

// PresenceCount counts the room's presence records.
func (p *Pebble) PresenceCount(code domain.RoomCode) (int, error) {
	lower, upper := prefixBounds("prs:" + string(code) + ":")
	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return 0, fmt.Errorf("iterate presence of %s: %w", code, err)
	}
	defer iter.Close()
	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

func (p *Pebble) WatchPresenceCount(ctx context.Context, code domain.RoomCode, fn func(int)) (CancelFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.watch(watchKey{room: code, kind: watchPresence}, func() {
		n, err := p.PresenceCount(code)
		if err != nil {
			log.Error().Err(err).Str("module", "store").Str("room", string(code)).Msg("presence count failed")
			return
		}
		fn(n)
	})
}

// watch runs deliver once per pending signal on a dedicated goroutine.
// deliver re-reads the latest snapshot, so coalesced signals lose nothing.
// Close blocks until every watcher goroutine has drained, so deliver
// never touches the database after it shuts down.
func (p *Pebble) watch(key watchKey, deliver func()) (CancelFunc, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	id, ch := p.hub.subscribe(key)
	p.watchers.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.watchers.Done()
		for range ch {
			deliver()
		}
	}()
	return func() { p.hub.unsubscribe(key, id) }, nil
}
