package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Repository) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Repository) Save(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
