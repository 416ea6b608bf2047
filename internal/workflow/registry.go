package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

// Registry открытые страницы по id. Контроллеры между собой ничего не делят.
type Registry struct {
	gateway gateway.Gateway
	store   credential.Store
	logger  zerolog.Logger
	opts    []Option

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller
}

func NewRegistry(gw gateway.Gateway, store credential.Store, logger zerolog.Logger, opts ...Option) *Registry {
	return &Registry{
		gateway:  gw,
		store:    store,
		logger:   logger,
		opts:     opts,
		sessions: make(map[uuid.UUID]*Controller),
	}
}

func (r *Registry) Mount(kind models.FlowKind) (*Controller, error) {
	c, err := NewController(kind, r.gateway, r.store, r.logger, r.opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[c.ID()] = c
	r.mu.Unlock()

	r.logger.Debug().Str("session_id", c.ID().String()).Str("flow", kind.String()).Msg("Session mounted")
	return c, nil
}

func (r *Registry) Get(id string) (*Controller, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	r.mu.RLock()
	c, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Unmount закрывает контроллер и убирает его из реестра
func (r *Registry) Unmount(id string) error {
	c, err := r.Get(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, c.ID())
	r.mu.Unlock()

	c.Close()
	r.logger.Debug().Str("session_id", id).Msg("Session unmounted")
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep закрывает сессии, простаивающие не меньше ttl. Страница, ушедшая
// без DELETE, иначе жила бы до конца процесса.
func (r *Registry) Sweep(ttl time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	var expired []*Controller
	for id, c := range r.sessions {
		if c.IdleFor(now) >= ttl {
			expired = append(expired, c)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
		r.logger.Debug().Str("session_id", c.ID().String()).Msg("Idle session expired")
	}
	if len(expired) > 0 {
		r.logger.Info().Int("expired", len(expired)).Int("active", r.Len()).Msg("Idle sessions swept")
	}
	return len(expired)
}

// RunSweeper вызывает Sweep каждые interval до отмены ctx
func (r *Registry) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ttl)
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Controller)
	r.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
