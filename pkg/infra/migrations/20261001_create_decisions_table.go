package migrations

import (
	"github.com/NeuralTrust/PromptGuard/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261001_create_decisions_table",
		Name: "Create decisions table",
		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS decisions (
					id                UUID PRIMARY KEY,
					session_id        TEXT NOT NULL,
					prompt            TEXT NOT NULL DEFAULT '',
					action            TEXT NOT NULL,
					verdict           TEXT NOT NULL,
					tier              SMALLINT NOT NULL,
					tier1_label       TEXT NOT NULL,
					attack_type       TEXT,
					severity          TEXT,
					confidence        DOUBLE PRECISION,
					escalation_reason TEXT,
					tier1_failed      BOOLEAN NOT NULL DEFAULT FALSE,
					latency_ms        BIGINT NOT NULL DEFAULT 0,
					analysis          JSONB,
					created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`).Error; err != nil {
				return err
			}
			if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_session_id ON decisions (session_id);`).Error; err != nil {
				return err
			}
			return db.Exec(`CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions (created_at DESC);`).Error
		},
	})
}
