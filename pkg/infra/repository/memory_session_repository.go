package repository

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
)

type memorySessionRepository struct {
	sessions *cache.TTLMap
	policy   session.Policy
}

func NewMemorySessionRepository(sessions *cache.TTLMap, policy session.Policy) session.Repository {
	return &memorySessionRepository{
		sessions: sessions,
		policy:   policy,
	}
}

func (r *memorySessionRepository) GetOrCreate(_ context.Context, id string) (*session.Session, error) {
	value, created := r.sessions.GetOrSetAndHold(id, func() interface{} {
		return session.New(id, r.policy)
	}, acquireSession)
	if created {
		prometheus.ActiveSessions.Inc()
	}
	s, ok := castSession(value)
	if !ok {
		return nil, errInvalidSessionEntry
	}
	return s, nil
}

func (r *memorySessionRepository) Get(_ context.Context, id string) (*session.Session, error) {
	value, ok := r.sessions.Get(id)
	if !ok {
		return nil, session.NewNotFoundError(id)
	}
	s, ok := castSession(value)
	if !ok {
		return nil, errInvalidSessionEntry
	}
	return s, nil
}

func (r *memorySessionRepository) Save(context.Context, *session.Session) error {
	return nil
}
