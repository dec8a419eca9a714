package decision

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
)

const MaxListLimit = 500

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=finder_mock.go --case=underscore --with-expecter
type Finder interface {
	ListRecent(ctx context.Context, limit int) ([]*decision.Decision, error)
	Summary(ctx context.Context) (*decision.Summary, error)
}

type finder struct {
	repo decision.Repository
}

func NewFinder(repository decision.Repository) Finder {
	return &finder{
		repo: repository,
	}
}

// ListRecent clamps limit to [1, MaxListLimit], using the default for
// non-positive values.
func (f *finder) ListRecent(ctx context.Context, limit int) ([]*decision.Decision, error) {
	switch {
	case limit <= 0:
		limit = decision.DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	decisions, err := f.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if decisions == nil {
		decisions = []*decision.Decision{}
	}
	return decisions, nil
}

func (f *finder) Summary(ctx context.Context) (*decision.Summary, error) {
	return f.repo.Summary(ctx)
}
