package decisionlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision/mocks"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry/decisionlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExporter_Handle(t *testing.T) {
	repo := new(mocks.Repository)
	d := &decision.Decision{SessionID: "s1"}
	repo.On("Save", mock.Anything, d).Return(nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	e := decisionlog.NewDecisionLogExporter(repo)
	require.NoError(t, e.ValidateConfig(nil))
	configured, err := e.WithSettings(map[string]interface{}{"ignored": true})
	require.NoError(t, err)

	assert.NoError(t, configured.Handle(context.Background(), d))
	assert.EqualError(t, configured.Handle(context.Background(), &decision.Decision{}), "db down")
	repo.AssertExpectations(t)
}

func TestExporter_ValidateWithoutRepository(t *testing.T) {
	assert.Error(t, decisionlog.NewDecisionLogExporter(nil).ValidateConfig(nil))
}
