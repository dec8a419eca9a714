package session

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain"
)

const EntityType = "session"

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=session_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	// GetOrCreate returns the session for id, creating it when unknown.
	// Concurrent callers with the same id always receive the same *Session.
	// The session comes back acquired, pinned against eviction; the caller
	// must Release it.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Get never creates; unknown ids yield a not-found error.
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists the session after a Record. In-memory stores may no-op.
	Save(ctx context.Context, s *Session) error
}

func NewNotFoundError(id string) error {
	return domain.NewNotFoundError(EntityType, id)
}
