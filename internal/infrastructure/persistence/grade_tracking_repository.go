package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGradeTrackingRepository implements GradeTrackingRepository using GORM
type GormGradeTrackingRepository struct {
	db *gorm.DB
}

// NewGormGradeTrackingRepository creates a new GormGradeTrackingRepository
func NewGormGradeTrackingRepository(db *gorm.DB) *GormGradeTrackingRepository {
	return &GormGradeTrackingRepository{db: db}
}

// FindByID finds a tracking by its ID
func (r *GormGradeTrackingRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	var model models.GradeTrackingModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the tracking under a row-level lock
func (r *GormGradeTrackingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	var model models.GradeTrackingModel
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

// FindByKey looks up the tracking by its natural key, or nil when none exists
func (r *GormGradeTrackingRepository) FindByKey(ctx context.Context, companyID, policyID uuid.UUID, periodType valueobject.PeriodType, periodStart time.Time) (*settlement.CommissionGradeTracking, error) {
	var model models.GradeTrackingModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ? AND policy_id = ? AND period_type = ? AND period_start = ?",
			companyID, policyID, string(periodType), periodStart).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveAt returns the active trackings for (company, policy) whose
// period contains at.
func (r *GormGradeTrackingRepository) FindActiveAt(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	return r.findActiveAt(ctx, companyID, policyID, at, false)
}

// FindActiveAtForUpdate is FindActiveAt under row-level locks
func (r *GormGradeTrackingRepository) FindActiveAtForUpdate(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	return r.findActiveAt(ctx, companyID, policyID, at, true)
}

func (r *GormGradeTrackingRepository) findActiveAt(ctx context.Context, companyID, policyID uuid.UUID, at time.Time, forUpdate bool) ([]*settlement.CommissionGradeTracking, error) {
	query := dbFromContext(ctx, r.db).
		Where("company_id = ? AND policy_id = ?", companyID, policyID).
		Where("is_active = ?", true).
		Where("period_start <= ? AND period_end > ?", at, at).
		Order("period_start, id")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.GradeTrackingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	trackings := make([]*settlement.CommissionGradeTracking, len(rows))
	for i := range rows {
		trackings[i] = rows[i].ToDomain()
	}
	return trackings, nil
}

// FindByCompany returns all trackings for a company
func (r *GormGradeTrackingRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]settlement.CommissionGradeTracking, error) {
	var rows []models.GradeTrackingModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("period_start DESC, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	trackings := make([]settlement.CommissionGradeTracking, len(rows))
	for i := range rows {
		trackings[i] = *rows[i].ToDomain()
	}
	return trackings, nil
}

// Save creates or updates a tracking
func (r *GormGradeTrackingRepository) Save(ctx context.Context, tracking *settlement.CommissionGradeTracking) error {
	var model models.GradeTrackingModel
	model.FromDomain(tracking)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

// SaveHistory appends one achievement history row
func (r *GormGradeTrackingRepository) SaveHistory(ctx context.Context, history *settlement.GradeAchievementHistory) error {
	var model models.GradeHistoryModel
	model.FromDomain(history)
	return dbFromContext(ctx, r.db).Create(&model).Error
}

// FindHistory returns the achievement history for a tracking, oldest first
func (r *GormGradeTrackingRepository) FindHistory(ctx context.Context, trackingID uuid.UUID) ([]settlement.GradeAchievementHistory, error) {
	var rows []models.GradeHistoryModel
	if err := dbFromContext(ctx, r.db).
		Where("tracking_id = ?", trackingID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	history := make([]settlement.GradeAchievementHistory, len(rows))
	for i := range rows {
		history[i] = *rows[i].ToDomain()
	}
	return history, nil
}
