package chat

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sqlchat/sqlchat/internal/observability"
)

// Registry holds live sessions in memory. Nothing survives a restart.
type Registry struct {
	pipeline    Pipeline
	opts        Options
	maxSessions int
	logger      *slog.Logger
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry. maxSessions <= 0 means no limit.
func NewRegistry(pipeline Pipeline, opts Options, maxSessions int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		pipeline:    pipeline,
		opts:        opts,
		maxSessions: maxSessions,
		logger:      logger,
		newID:       uuid.NewString,
		sessions:    map[string]*Session{},
	}
}

func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return nil, ErrSessionLimit
	}
	id := r.newID()
	session := NewSession(id, r.pipeline, r.opts, r.logger)
	r.sessions[id] = session
	observability.SetActiveSessions(len(r.sessions))
	r.logger.Info("session created", slog.String("session_id", id))
	return session, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	observability.SetActiveSessions(len(r.sessions))
	r.logger.Info("session deleted", slog.String("session_id", id))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
