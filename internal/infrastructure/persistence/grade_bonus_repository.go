package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGradeBonusRepository implements GradeBonusRepository using GORM
type GormGradeBonusRepository struct {
	db *gorm.DB
}

// NewGormGradeBonusRepository creates a new GormGradeBonusRepository
func NewGormGradeBonusRepository(db *gorm.DB) *GormGradeBonusRepository {
	return &GormGradeBonusRepository{db: db}
}

// FindByID finds a bonus settlement by its ID
func (r *GormGradeBonusRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	var model models.GradeBonusModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the bonus settlement under a row-level lock
func (r *GormGradeBonusRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	var model models.GradeBonusModel
	if err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByTracking returns the open pending bonus row for the tracking,
// or nil when none exists.
func (r *GormGradeBonusRepository) FindPendingByTracking(ctx context.Context, trackingID uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	var model models.GradeBonusModel
	if err := dbFromContext(ctx, r.db).
		Where("tracking_id = ? AND status = ?", trackingID, settlement.SettlementStatusPending).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTracking returns every bonus settlement for a tracking, oldest first
func (r *GormGradeBonusRepository) FindByTracking(ctx context.Context, trackingID uuid.UUID) ([]settlement.GradeBonusSettlement, error) {
	var rows []models.GradeBonusModel
	if err := dbFromContext(ctx, r.db).
		Where("tracking_id = ?", trackingID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	bonuses := make([]settlement.GradeBonusSettlement, len(rows))
	for i := range rows {
		bonuses[i] = *rows[i].ToDomain()
	}
	return bonuses, nil
}

// FindByCompany returns every bonus settlement for a company
func (r *GormGradeBonusRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]settlement.GradeBonusSettlement, error) {
	var rows []models.GradeBonusModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	bonuses := make([]settlement.GradeBonusSettlement, len(rows))
	for i := range rows {
		bonuses[i] = *rows[i].ToDomain()
	}
	return bonuses, nil
}

// Save creates or updates a bonus settlement
func (r *GormGradeBonusRepository) Save(ctx context.Context, bonus *settlement.GradeBonusSettlement) error {
	var model models.GradeBonusModel
	model.FromDomain(bonus)
	return dbFromContext(ctx, r.db).Save(&model).Error
}
