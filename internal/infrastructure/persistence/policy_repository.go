package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPolicyRepository implements PolicyRepository using GORM
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewGormPolicyRepository creates a new GormPolicyRepository
func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

// FindByID finds a policy by its ID
func (r *GormPolicyRepository) FindByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	var model models.PolicyModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a policy by its code
func (r *GormPolicyRepository) FindByCode(ctx context.Context, code string) (*policy.Policy, error) {
	var model models.PolicyModel
	if err := dbFromContext(ctx, r.db).
		Where("code = ?", strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds policies matching the filter
func (r *GormPolicyRepository) FindAll(ctx context.Context, filter policy.PolicyFilter) ([]policy.Policy, error) {
	query := dbFromContext(ctx, r.db).Model(&models.PolicyModel{})

	if filter.Carrier != nil {
		query = query.Where("carrier = ?", string(*filter.Carrier))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.PolicyModel
	if err := query.Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	policies := make([]policy.Policy, len(rows))
	for i := range rows {
		policies[i] = *rows[i].ToDomain()
	}
	return policies, nil
}

// Save creates or updates a policy
func (r *GormPolicyRepository) Save(ctx context.Context, p *policy.Policy) error {
	var model models.PolicyModel
	model.FromDomain(p)
	return dbFromContext(ctx, r.db).Save(&model).Error
}
