package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRebateMatrixRepository implements RebateMatrixRepository using GORM
type GormRebateMatrixRepository struct {
	db *gorm.DB
}

// NewGormRebateMatrixRepository creates a new GormRebateMatrixRepository
func NewGormRebateMatrixRepository(db *gorm.DB) *GormRebateMatrixRepository {
	return &GormRebateMatrixRepository{db: db}
}

// FindByKey finds the rebate entry for a carrier, plan range and contract period
func (r *GormRebateMatrixRepository) FindByKey(ctx context.Context, carrier policy.Carrier, planRange policy.PlanRange, contractPeriod policy.ContractPeriod) (*policy.RebateEntry, error) {
	var model models.RebateEntryModel
	err := dbFromContext(ctx, r.db).
		Where("carrier = ? AND plan_range = ? AND contract_period = ?",
			string(carrier), string(planRange), int(contractPeriod)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPolicy returns all rebate entries belonging to a policy
func (r *GormRebateMatrixRepository) FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]policy.RebateEntry, error) {
	var rows []models.RebateEntryModel
	err := dbFromContext(ctx, r.db).
		Where("policy_id = ?", policyID).
		Order("carrier, plan_range, contract_period").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]policy.RebateEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a rebate entry
func (r *GormRebateMatrixRepository) Save(ctx context.Context, entry *policy.RebateEntry) error {
	var model models.RebateEntryModel
	model.FromDomain(entry)
	return dbFromContext(ctx, r.db).Save(&model).Error
}
