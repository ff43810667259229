package persistence

import (
	"context"

	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSplitRuleRepository implements SplitRuleRepository using GORM
type GormSplitRuleRepository struct {
	db *gorm.DB
}

// NewGormSplitRuleRepository creates a new GormSplitRuleRepository
func NewGormSplitRuleRepository(db *gorm.DB) *GormSplitRuleRepository {
	return &GormSplitRuleRepository{db: db}
}

// LoadSplitPolicy loads all active split rules as a SplitPolicy.
// Falls back to the default policy when no rules are configured.
func (r *GormSplitRuleRepository) LoadSplitPolicy(ctx context.Context) (*policy.SplitPolicy, error) {
	var rows []models.SplitRuleModel
	err := dbFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("company_type").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return policy.DefaultSplitPolicy(), nil
	}
	rules := make([]policy.SplitRule, len(rows))
	for i := range rows {
		rules[i] = rows[i].ToDomain()
	}
	return policy.NewSplitPolicy(rules...)
}

// SaveRule upserts a split rule by company type
func (r *GormSplitRuleRepository) SaveRule(ctx context.Context, rule policy.SplitRule) error {
	var model models.SplitRuleModel
	model.FromDomain(rule)
	return dbFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"own_share_bps", "parent_share_bps", "is_active", "updated_at"}),
		}).
		Create(&model).Error
}
