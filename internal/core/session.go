package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateJoining
	StateCreating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateJoining:
		return "joining"
	case StateCreating:
		return "creating"
	case StateActive:
		return "active"
	default:
		return "idle"
	}
}

// Deps are the collaborators a session orchestrates.
type Deps struct {
	Directory Directory
	Stream    Stream
	Presence  Presence
}

// Session owns at most one active room at a time: the live message list,
// the occupant count and the two subscription handles. Join, create and
// leave each bump a generation counter; async completions and stream
// callbacks apply only while their generation is still current, so a
// superseded operation can never install a stale subscription.
type Session struct {
	user    *domain.User
	deps    Deps
	link    *DeepLink
	enabled bool

	mu             sync.Mutex
	state          State
	room           *domain.Room
	messages       []domain.Message
	occupants      int
	gen            uint64
	cancelMessages CancelFunc
	cancelPresence CancelFunc
	autoJoined     bool

	onMessages func([]domain.Message)
	onCount    func(int)
}

func NewSession(user *domain.User, deps Deps, link *DeepLink, enabled bool) *Session {
	return &Session{user: user, deps: deps, link: link, enabled: enabled}
}

// SetSinks installs the consumer callbacks. Must be called before the
// first join or create; callbacks run on the stream's goroutine.
func (s *Session) SetSinks(onMessages func([]domain.Message), onCount func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMessages = onMessages
	s.onCount = onCount
}

func (s *Session) User() *domain.User { return s.user }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Room() *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Occupants() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupants
}

// ShareURL is the current deep link: the invite URL while a room is
// active, the bare page URL otherwise.
func (s *Session) ShareURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room != nil {
		return s.link.WithRoom(s.room.Code)
	}
	return s.link.Bare()
}

// InviteLink returns the shareable room URL, or ErrNoActiveRoom.
func (s *Session) InviteLink() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return "", ErrNoActiveRoom
	}
	return s.link.WithRoom(s.room.Code), nil
}

// Create allocates a fresh room and joins it.
func (s *Session) Create(ctx context.Context) (*domain.Room, error) {
	if !s.enabled {
		return nil, ErrBackendUnavailable
	}
	_, gen := s.supersede(ctx, StateCreating)
	room, err := s.deps.Directory.CreateFresh(ctx, s.user.ID)
	if err != nil {
		s.fail(gen)
		return nil, err
	}
	if err := s.activate(ctx, gen, room, "created the room"); err != nil {
		return nil, err
	}
	return room, nil
}

// Join resolves the raw input (trim, upper-case) and joins an existing
// room. ErrNotFound is user-recoverable; the session returns to idle.
func (s *Session) Join(ctx context.Context, raw string) (*domain.Room, error) {
	if !s.enabled {
		return nil, ErrBackendUnavailable
	}
	code, err := domain.ParseRoomCode(raw)
	if err != nil {
		return nil, ErrInvalidCode
	}
	_, gen := s.supersede(ctx, StateJoining)
	room, err := s.deps.Directory.Lookup(ctx, code)
	if err != nil {
		s.fail(gen)
		return nil, err
	}
	if err := s.activate(ctx, gen, room, "joined the room"); err != nil {
		return nil, err
	}
	return room, nil
}

// AutoJoin attempts a join from the page URL's room parameter, exactly
// once per session. Reports whether a join was attempted.
func (s *Session) AutoJoin(ctx context.Context, pageURL string) (bool, error) {
	s.mu.Lock()
	if s.autoJoined {
		s.mu.Unlock()
		return false, nil
	}
	s.autoJoined = true
	s.mu.Unlock()

	code, ok := ExtractCode(pageURL)
	if !ok {
		return false, nil
	}
	_, err := s.Join(ctx, string(code))
	return true, err
}

// Leave tears down both subscriptions, removes the presence record and
// clears local room state. Idempotent: leaving while idle is a no-op.
func (s *Session) Leave(ctx context.Context) {
	room, _ := s.supersede(ctx, StateIdle)
	if room == nil {
		return
	}
	log.Info().Str("module", "core.session").Str("user", string(s.user.ID)).Str("room", string(room.Code)).Msg("left room")
}

// Send appends a message with a server-assigned timestamp. There is no
// optimistic local append: the live subscription is the sole source of
// truth for rendering.
func (s *Session) Send(ctx context.Context, text string) error {
	if !s.enabled {
		return ErrBackendUnavailable
	}
	s.mu.Lock()
	room := s.room
	active := s.state == StateActive
	s.mu.Unlock()
	if !active || room == nil {
		return ErrNoActiveRoom
	}
	msg, err := domain.NewMessage(room.Code, s.user, text)
	if err != nil {
		return err
	}
	if _, err := s.deps.Stream.Append(ctx, room.Code, msg); err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("room", string(room.Code)).Msg("send failed")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}

// supersede retires whatever operation or room came before: bumps the
// generation, cancels live subscriptions and, when a room was active,
// removes its presence record and announces the departure. Returns the
// previous room (nil if none) and the new generation.
func (s *Session) supersede(ctx context.Context, next State) (*domain.Room, uint64) {
	s.mu.Lock()
	room := s.room
	cancelMsgs := s.cancelMessages
	cancelCount := s.cancelPresence
	s.room = nil
	s.messages = nil
	s.occupants = 0
	s.cancelMessages = nil
	s.cancelPresence = nil
	s.state = next
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if cancelMsgs != nil {
		cancelMsgs()
	}
	if cancelCount != nil {
		cancelCount()
	}
	if room != nil {
		s.deps.Presence.Unregister(ctx, room.Code, s.user.ID)
		s.announce(ctx, room.Code, "left the room")
	}
	return room, gen
}

// fail returns the session to idle unless a newer operation took over.
func (s *Session) fail(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.state = StateIdle
	}
}

// activate opens the message stream and presence tracking, then installs
// the room if this operation is still the latest one.
func (s *Session) activate(ctx context.Context, gen uint64, room *domain.Room, verb string) error {
	cancelMsgs, err := s.deps.Stream.Watch(ctx, room.Code, func(msgs []domain.Message) {
		s.applyMessages(gen, msgs)
	})
	if err != nil {
		s.fail(gen)
		return fmt.Errorf("subscribe to room %s: %w", room.Code, err)
	}
	s.deps.Presence.Register(ctx, room.Code, s.user)
	cancelCount := s.deps.Presence.WatchCount(ctx, room.Code, func(n int) {
		s.applyCount(gen, n)
	})

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		cancelMsgs()
		if cancelCount != nil {
			cancelCount()
		}
		s.deps.Presence.Unregister(ctx, room.Code, s.user.ID)
		return ErrSuperseded
	}
	s.room = room
	s.state = StateActive
	s.cancelMessages = cancelMsgs
	s.cancelPresence = cancelCount
	s.mu.Unlock()

	s.announce(ctx, room.Code, verb)
	log.Info().Str("module", "core.session").Str("user", string(s.user.ID)).Str("room", string(room.Code)).Msg("room active")
	return nil
}

// announce appends a system message; failures never affect the caller.
func (s *Session) announce(ctx context.Context, code domain.RoomCode, verb string) {
	msg := domain.NewSystemMessage(code, s.user.DisplayName+" "+verb)
	if _, err := s.deps.Stream.Append(ctx, code, msg); err != nil {
		log.Warn().Err(err).Str("module", "core.session").Str("room", string(code)).Msg("announce failed")
	}
}

func (s *Session) applyMessages(gen uint64, msgs []domain.Message) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.messages = msgs
	sink := s.onMessages
	s.mu.Unlock()
	if sink != nil {
		sink(msgs)
	}
}

func (s *Session) applyCount(gen uint64, n int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.occupants = n
	sink := s.onCount
	s.mu.Unlock()
	if sink != nil {
		sink(n)
	}
}
