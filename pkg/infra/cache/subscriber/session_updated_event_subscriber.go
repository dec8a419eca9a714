package subscriber

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	infraCache "github.com/NeuralTrust/PromptGuard/pkg/infra/cache"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/event"
	"github.com/sirupsen/logrus"
)

type SessionUpdatedEventSubscriber struct {
	logger      *logrus.Logger
	origin      string
	memoryCache *infraCache.TTLMap
}

// NewSessionUpdatedEventSubscriber drops local copies of sessions persisted by
// other replicas so the next request rehydrates them from redis.
func NewSessionUpdatedEventSubscriber(
	logger *logrus.Logger,
	memoryCache *infraCache.TTLMap,
	origin string,
) infraCache.EventSubscriber[event.SessionUpdatedEvent] {
	return &SessionUpdatedEventSubscriber{
		logger:      logger,
		origin:      origin,
		memoryCache: memoryCache,
	}
}

func (s *SessionUpdatedEventSubscriber) OnEvent(ctx context.Context, evt event.SessionUpdatedEvent) error {
	if evt.Origin == s.origin || s.memoryCache == nil {
		return nil
	}
	dropped := s.memoryCache.DeleteIf(evt.SessionID, func(value interface{}) bool {
		sess, ok := value.(*session.Session)
		return !ok || !sess.Busy()
	})
	if dropped {
		s.logger.WithFields(logrus.Fields{
			"session_id": evt.SessionID,
			"origin":     evt.Origin,
		}).Debug("invalidated local session copy")
	}
	return nil
}
