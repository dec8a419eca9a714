package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/event"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// redisSessionRepository keeps the live *Session objects (and so their turn
// locks) in a local map and mirrors their state to redis snapshots. A replica
// that misses locally hydrates from the latest snapshot; Save announces the
// update so other replicas drop their stale copies.
type redisSessionRepository struct {
	logger     *logrus.Logger
	cache      cache.Client
	publisher  cache.EventPublisher
	sessions   *cache.TTLMap
	policy     session.Policy
	ttl        time.Duration
	instanceID string
}

type RedisSessionRepositoryParams struct {
	Logger     *logrus.Logger
	Cache      cache.Client
	Publisher  cache.EventPublisher
	Sessions   *cache.TTLMap
	Policy     session.Policy
	TTL        time.Duration
	InstanceID string
}

func NewRedisSessionRepository(p RedisSessionRepositoryParams) session.Repository {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &redisSessionRepository{
		logger:     p.Logger,
		cache:      p.Cache,
		publisher:  p.Publisher,
		sessions:   p.Sessions,
		policy:     p.Policy,
		ttl:        ttl,
		instanceID: p.InstanceID,
	}
}

func (r *redisSessionRepository) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	if value, ok := r.sessions.GetAndHold(id, acquireSession); ok {
		if s, ok := castSession(value); ok {
			return s, nil
		}
	}

	snap, err := r.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	value, created := r.sessions.GetOrSetAndHold(id, func() interface{} {
		if snap != nil {
			return session.Restore(*snap, r.policy)
		}
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

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	if value, ok := r.sessions.Get(id); ok {
		if s, ok := castSession(value); ok {
			return s, nil
		}
	}
	snap, err := r.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, session.NewNotFoundError(id)
	}
	// read-only view; it is not registered so a later GetOrCreate hydrates
	// the authoritative copy
	return session.Restore(*snap, r.policy), nil
}

func (r *redisSessionRepository) Save(ctx context.Context, s *session.Session) error {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.cache.Set(ctx, fmt.Sprintf(cache.SessionKeyPattern, s.ID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if r.publisher == nil {
		return nil
	}
	if err := r.publisher.Publish(ctx, event.SessionUpdatedEvent{
		SessionID: s.ID,
		Origin:    r.instanceID,
	}); err != nil {
		r.logger.WithError(err).WithField("session_id", s.ID).Warn("failed to publish session update")
	}
	return nil
}

func (r *redisSessionRepository) loadSnapshot(ctx context.Context, id string) (*session.Snapshot, error) {
	raw, err := r.cache.Get(ctx, fmt.Sprintf(cache.SessionKeyPattern, id))
	if err != nil {
		if cache.IsMiss(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		r.logger.WithError(err).WithField("session_id", id).Warn("discarding corrupt session snapshot")
		return nil, nil
	}
	snap.ID = id
	return &snap, nil
}
