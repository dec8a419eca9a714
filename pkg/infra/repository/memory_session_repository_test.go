package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository_GetOrCreateIsAtomic(t *testing.T) {
	repo := repository.NewMemorySessionRepository(
		repository.NewSessionMap(repository.SessionStoreConfig{TTL: time.Hour}),
		session.DefaultPolicy(),
	)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*session.Session, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := repo.GetOrCreate(ctx, "shared")
			require.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestMemorySessionRepository_GetUnknown(t *testing.T) {
	repo := repository.NewMemorySessionRepository(
		repository.NewSessionMap(repository.SessionStoreConfig{}),
		session.DefaultPolicy(),
	)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestMemorySessionRepository_GetSeesRecordedState(t *testing.T) {
	repo := repository.NewMemorySessionRepository(
		repository.NewSessionMap(repository.SessionStoreConfig{}),
		session.DefaultPolicy(),
	)
	ctx := context.Background()

	s, err := repo.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	s.Record(verdict.Block, "jailbreak")
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats().TotalBlocked)
}

func TestMemorySessionRepository_BusySessionsSurviveCap(t *testing.T) {
	sessions := repository.NewSessionMap(repository.SessionStoreConfig{MaxEntries: 1})
	repo := repository.NewMemorySessionRepository(sessions, session.DefaultPolicy())
	ctx := context.Background()

	busy, err := repo.GetOrCreate(ctx, "busy")
	require.NoError(t, err)
	busy.Begin()
	defer busy.End()

	_, err = repo.GetOrCreate(ctx, "other")
	require.NoError(t, err)

	got, err := repo.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Same(t, busy, got)
}

func TestMemorySessionRepository_AcquiredSessionSurvivesCapBeforeBegin(t *testing.T) {
	sessions := repository.NewSessionMap(repository.SessionStoreConfig{MaxEntries: 1})
	repo := repository.NewMemorySessionRepository(sessions, session.DefaultPolicy())
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	assert.True(t, first.Busy())

	other, err := repo.GetOrCreate(ctx, "b")
	require.NoError(t, err)
	defer other.Release()

	again, err := repo.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, first, again)

	first.Record(verdict.Block, "jailbreak")
	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats().TotalBlocked)

	first.Release()
	again.Release()
	assert.False(t, first.Busy())
}

func TestMemorySessionRepository_ReleasedSessionIsEvictable(t *testing.T) {
	sessions := repository.NewSessionMap(repository.SessionStoreConfig{MaxEntries: 1})
	repo := repository.NewMemorySessionRepository(sessions, session.DefaultPolicy())
	ctx := context.Background()

	a, err := repo.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	a.Release()

	b, err := repo.GetOrCreate(ctx, "b")
	require.NoError(t, err)
	defer b.Release()

	_, err = repo.Get(ctx, "a")
	assert.True(t, domain.IsNotFoundError(err))
	assert.Equal(t, 1, sessions.Len())
}
