package session

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
)

//go:generate mockery --name=StatsFinder --dir=. --output=./mocks --filename=stats_finder_mock.go --case=underscore --with-expecter
type StatsFinder interface {
	// FindStats never creates a session; unknown ids yield a not-found error.
	FindStats(ctx context.Context, sessionID string) (*session.Stats, error)
}

type statsFinder struct {
	repo session.Repository
}

func NewStatsFinder(repository session.Repository) StatsFinder {
	return &statsFinder{
		repo: repository,
	}
}

func (f *statsFinder) FindStats(ctx context.Context, sessionID string) (*session.Stats, error) {
	s, err := f.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats := s.Stats()
	return &stats, nil
}
