package repository

import (
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
)

const (
	DefaultSessionTTL        = time.Hour
	DefaultSessionMaxEntries = 100000
)

type SessionStoreConfig struct {
	Store           string        `mapstructure:"store"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// SessionMapOptions configures the registry map: capped, with sessions that
// have an in-flight routing call pinned against eviction.
func SessionMapOptions(maxEntries int) []cache.TTLOption {
	if maxEntries <= 0 {
		maxEntries = DefaultSessionMaxEntries
	}
	return []cache.TTLOption{
		cache.WithMaxEntries(maxEntries),
		cache.WithPinned(func(value interface{}) bool {
			s, ok := value.(*session.Session)
			return ok && s.Busy()
		}),
		cache.WithOnEvict(func(string, interface{}) {
			prometheus.ActiveSessions.Dec()
		}),
	}
}

// NewSessionMap builds a standalone registry map for the in-memory store.
func NewSessionMap(cfg SessionStoreConfig) *cache.TTLMap {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return cache.NewTTLMap(ttl, SessionMapOptions(cfg.MaxEntries)...)
}

func castSession(value interface{}) (*session.Session, bool) {
	s, ok := value.(*session.Session)
	return s, ok
}

func acquireSession(value interface{}) {
	if s, ok := value.(*session.Session); ok {
		s.Acquire()
	}
}
