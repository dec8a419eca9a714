package repository

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"gorm.io/gorm"
)

type decisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(db *gorm.DB) decision.Repository {
	return &decisionRepository{
		db: db,
	}
}

func (r *decisionRepository) Save(ctx context.Context, d *decision.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *decisionRepository) ListRecent(ctx context.Context, limit int) ([]*decision.Decision, error) {
	if limit <= 0 {
		limit = decision.DefaultListLimit
	}
	var decisions []*decision.Decision
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&decisions).Error
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

type summaryRow struct {
	Verdict    verdict.Verdict
	Tier       int
	AttackType string
	Count      int64
}

func (r *decisionRepository) Summary(ctx context.Context) (*decision.Summary, error) {
	var rows []summaryRow
	err := r.db.WithContext(ctx).
		Model(&decision.Decision{}).
		Select("verdict, tier, attack_type, count(*) AS count").
		Group("verdict, tier, attack_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	summary := decision.NewSummary()
	for _, row := range rows {
		summary.AddCount(&decision.Decision{
			Verdict:    row.Verdict,
			Tier:       row.Tier,
			AttackType: row.AttackType,
		}, row.Count)
	}
	return summary, nil
}
