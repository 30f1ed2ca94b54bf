package app

import (
	"context"

	"github.com/lofiflow/lounge/internal/core"
	"github.com/lofiflow/lounge/internal/domain"
	"github.com/lofiflow/lounge/internal/store"
)

// Service bundles the chat collaborators behind one injected object with
// an explicit enabled flag, instead of nullable globals. When the chat
// feature flag is off the backend is nil and never touched: sessions
// refuse every operation with ErrBackendUnavailable before reaching it.
type Service struct {
	Registry *Registry
	Link     *core.DeepLink
	Enabled  bool

	directory *RoomDirectory
	stream    *MessageStream
	presence  *PresenceTracker
}

func NewService(backend store.Backend, link *core.DeepLink, enabled bool) *Service {
	return &Service{
		Registry:  NewRegistry(),
		Link:      link,
		Enabled:   enabled && backend != nil,
		directory: NewRoomDirectory(backend),
		stream:    NewMessageStream(backend),
		presence:  NewPresenceTracker(backend),
	}
}

// Lookup is the directory point read, exposed for the pre-join check.
func (s *Service) Lookup(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	if !s.Enabled {
		return nil, core.ErrBackendUnavailable
	}
	return s.directory.Lookup(ctx, code)
}

// NewSession builds a session bound to the token's anonymous identity.
func (s *Service) NewSession(token ClientToken) *core.Session {
	user := s.Registry.GetOrCreateUser(token)
	deps := core.Deps{
		Directory: s.directory,
		Stream:    s.stream,
		Presence:  s.presence,
	}
	return core.NewSession(user, deps, s.Link, s.Enabled)
}
