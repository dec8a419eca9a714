package session_test

import (
	"context"
	"testing"

	appSession "github.com/NeuralTrust/PromptGuard/pkg/app/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session/mocks"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatsFinder_FindStats(t *testing.T) {
	repo := new(mocks.Repository)
	s := session.New("s1", session.DefaultPolicy())
	s.Record(verdict.Block, "jailbreak")
	repo.On("Get", mock.Anything, "s1").Return(s, nil)

	stats, err := appSession.NewStatsFinder(repo).FindStats(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", stats.SessionID)
	assert.Equal(t, 1, stats.TotalBlocked)
	assert.Equal(t, []bool{true}, stats.BlockedLast5)
}

func TestStatsFinder_NotFound(t *testing.T) {
	repo := new(mocks.Repository)
	repo.On("Get", mock.Anything, "nope").Return(nil, session.NewNotFoundError("nope"))

	_, err := appSession.NewStatsFinder(repo).FindStats(context.Background(), "nope")
	assert.True(t, domain.IsNotFoundError(err))
	repo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}
