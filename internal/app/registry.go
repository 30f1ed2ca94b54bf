// Package app wires the document backend to the session core: identity
// issuance, the room directory with its retry loop, and the best-effort
// presence tracker.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lofiflow/lounge/internal/domain"
)

// ClientToken identifies a browser session (the `ct` cookie). The same
// token always resolves to the same anonymous identity, so reconnects
// keep their display name.
type ClientToken string

type Registry struct {
	mu    sync.RWMutex
	users map[ClientToken]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[ClientToken]*domain.User)}
}

func (r *Registry) GetOrCreateUser(token ClientToken) *domain.User {
	r.mu.RLock()
	u, ok := r.users[token]
	r.mu.RUnlock()
	if ok {
		return u
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok = r.users[token]; ok {
		return u
	}
	u = domain.NewAnonymousUser()
	r.users[token] = u
	log.Info().Str("module", "app.registry").Str("token", string(token)).Str("user", string(u.ID)).Msg("issued anonymous identity")
	return u
}
