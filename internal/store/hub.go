package store

import (
	"sync"

	"github.com/lofiflow/lounge/internal/domain"
)

type watchKind int

const (
	watchMessages watchKind = iota
	watchPresence
)

type watchKey struct {
	room domain.RoomCode
	kind watchKind
}

// hub fans mutation signals out to live subscribers. Subscribers get a
// one-slot signal channel: a slow consumer coalesces intermediate updates
// and re-reads the latest snapshot, it is never blocked on or dropped.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[watchKey]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[watchKey]map[int]chan struct{})}
}

// subscribe registers a signal channel and pushes the initial signal so
// the subscriber delivers the current snapshot right away.
func (h *hub) subscribe(key watchKey) (int, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	ch := make(chan struct{}, 1)
	if h.subs[key] == nil {
		h.subs[key] = make(map[int]chan struct{})
	}
	h.subs[key][id] = ch
	ch <- struct{}{}
	return id, ch
}

// unsubscribe is idempotent; the signal channel is closed exactly once.
func (h *hub) unsubscribe(key watchKey, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[key]
	if !ok {
		return
	}
	if ch, ok := set[id]; ok {
		delete(set, id)
		close(ch)
	}
	if len(set) == 0 {
		delete(h.subs, key)
	}
}

func (h *hub) notify(key watchKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
			// signal already pending, snapshot re-read covers this update
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, set := range h.subs {
		for id, ch := range set {
			delete(set, id)
			close(ch)
		}
		delete(h.subs, key)
	}
}
