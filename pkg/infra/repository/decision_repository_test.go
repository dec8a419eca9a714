package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, smock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, smock
}

func TestDecisionRepository_Save(t *testing.T) {
	db, smock := newGormMock(t)
	repo := repository.NewDecisionRepository(db)

	smock.ExpectBegin()
	smock.ExpectExec(`INSERT INTO "decisions"`).WillReturnResult(sqlmock.NewResult(1, 1))
	smock.ExpectCommit()

	err := repo.Save(context.Background(), &decision.Decision{
		ID:         uuid.New(),
		SessionID:  "s1",
		Action:     "block",
		Verdict:    verdict.Block,
		Tier:       verdict.Tier1,
		Tier1Label: verdict.LabelObviousAttack,
		AttackType: "obvious_attack",
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestDecisionRepository_ListRecent(t *testing.T) {
	db, smock := newGormMock(t)
	repo := repository.NewDecisionRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "session_id", "action", "verdict", "tier", "tier1_label", "created_at"}).
		AddRow(id.String(), "s1", "allow", "ALLOW", 1, "SAFE", time.Now())
	smock.ExpectQuery(`SELECT \* FROM "decisions" ORDER BY created_at desc LIMIT`).WillReturnRows(rows)

	got, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, verdict.Allow, got[0].Verdict)
	assert.NoError(t, smock.ExpectationsWereMet())
}

func TestDecisionRepository_Summary(t *testing.T) {
	db, smock := newGormMock(t)
	repo := repository.NewDecisionRepository(db)

	rows := sqlmock.NewRows([]string{"verdict", "tier", "attack_type", "count"}).
		AddRow("BLOCK", 1, "obvious_attack", 4).
		AddRow("ALLOW", 1, "", 10).
		AddRow("SANITISE", 2, "payload_smuggling", 2)
	smock.ExpectQuery(`SELECT verdict, tier, attack_type, count\(\*\) AS count FROM "decisions" GROUP BY verdict, tier, attack_type`).
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(16), summary.Processed)
	assert.Equal(t, int64(4), summary.Blocked)
	assert.Equal(t, int64(10), summary.Allowed)
	assert.Equal(t, int64(2), summary.Sanitised)
	assert.Equal(t, int64(14), summary.Tier1)
	assert.Equal(t, int64(2), summary.Tier2)
	assert.Equal(t, map[string]int64{"obvious_attack": 4, "payload_smuggling": 2}, summary.AttackTypes)
	assert.NoError(t, smock.ExpectationsWereMet())
}
