package database_test

import (
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/database"
	"github.com/stretchr/testify/assert"
)

func TestRegisterMigration_OrderedAndUnique(t *testing.T) {
	database.RegisterMigration(database.Migration{ID: "99990002_b", Name: "b"})
	database.RegisterMigration(database.Migration{ID: "99990001_a", Name: "a"})

	var ids []string
	for _, m := range database.Registered() {
		ids = append(ids, m.ID)
	}
	assert.Subset(t, ids, []string{"99990001_a", "99990002_b"})
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}

	assert.Panics(t, func() {
		database.RegisterMigration(database.Migration{ID: "99990001_a"})
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &database.Config{Host: "db", Port: 5432, User: "pg", Password: "pw", DBName: "promptguard"}
	assert.Equal(t, "host=db port=5432 user=pg password=pw dbname=promptguard sslmode=disable", cfg.DSN())
}
