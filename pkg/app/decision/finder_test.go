package decision_test

import (
	"context"
	"testing"

	appDecision "github.com/NeuralTrust/PromptGuard/pkg/app/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFinder_ListRecentClampsLimit(t *testing.T) {
	repo := new(mocks.Repository)
	repo.On("ListRecent", mock.Anything, decision.DefaultListLimit).Return(nil, nil).Once()
	repo.On("ListRecent", mock.Anything, appDecision.MaxListLimit).Return([]*decision.Decision{{SessionID: "s1"}}, nil).Once()
	repo.On("ListRecent", mock.Anything, 7).Return([]*decision.Decision{}, nil).Once()
	f := appDecision.NewFinder(repo)
	ctx := context.Background()

	got, err := f.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = f.ListRecent(ctx, 100000)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.ListRecent(ctx, 7)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestFinder_Summary(t *testing.T) {
	repo := new(mocks.Repository)
	summary := decision.NewSummary()
	summary.Processed = 3
	repo.On("Summary", mock.Anything).Return(summary, nil)

	got, err := appDecision.NewFinder(repo).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Processed)
}
