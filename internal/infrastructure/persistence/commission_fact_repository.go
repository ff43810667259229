package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCommissionFactRepository implements CommissionFactRepository using GORM
type GormCommissionFactRepository struct {
	db *gorm.DB
}

// NewGormCommissionFactRepository creates a new GormCommissionFactRepository
func NewGormCommissionFactRepository(db *gorm.DB) *GormCommissionFactRepository {
	return &GormCommissionFactRepository{db: db}
}

// FindByOrderAndCompany returns the fact for the pair, or nil when none exists
func (r *GormCommissionFactRepository) FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*settlement.CommissionFact, error) {
	var model models.CommissionFactModel
	if err := dbFromContext(ctx, r.db).
		Where("order_id = ? AND company_id = ?", orderID, companyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBatch returns the facts written by one ETL batch
func (r *GormCommissionFactRepository) FindByBatch(ctx context.Context, batchID string) ([]settlement.CommissionFact, error) {
	var rows []models.CommissionFactModel
	if err := dbFromContext(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("date_key, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	facts := make([]settlement.CommissionFact, len(rows))
	for i := range rows {
		facts[i] = *rows[i].ToDomain()
	}
	return facts, nil
}

// FindAllPaged pages through facts ordered by date key then id
func (r *GormCommissionFactRepository) FindAllPaged(ctx context.Context, offset, limit int) ([]settlement.CommissionFact, error) {
	var rows []models.CommissionFactModel
	if err := dbFromContext(ctx, r.db).
		Order("date_key, id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	facts := make([]settlement.CommissionFact, len(rows))
	for i := range rows {
		facts[i] = *rows[i].ToDomain()
	}
	return facts, nil
}

// Count returns the number of fact rows
func (r *GormCommissionFactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.CommissionFactModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SummarizeByCompany totals commission per settlement status for the
// company over date keys in [from, to).
func (r *GormCommissionFactRepository) SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]settlement.StatusTotal, error) {
	var rows []struct {
		SettlementStatus string
		Count            int64
		Total            decimal.Decimal
	}
	if err := dbFromContext(ctx, r.db).
		Model(&models.CommissionFactModel{}).
		Select("settlement_status, COUNT(*) AS count, COALESCE(SUM(total_commission), 0) AS total").
		Where("company_id = ? AND date_key >= ? AND date_key < ?", companyID, from, to).
		Group("settlement_status").
		Order("settlement_status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]settlement.StatusTotal, len(rows))
	for i, row := range rows {
		totals[i] = settlement.StatusTotal{
			Status: settlement.SettlementStatus(row.SettlementStatus),
			Count:  row.Count,
			Total:  row.Total,
		}
	}
	return totals, nil
}

// Save creates or updates a fact row
func (r *GormCommissionFactRepository) Save(ctx context.Context, fact *settlement.CommissionFact) error {
	var model models.CommissionFactModel
	model.FromDomain(fact)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

// DeleteAll truncates the projection ahead of a full rebuild
func (r *GormCommissionFactRepository) DeleteAll(ctx context.Context) error {
	return dbFromContext(ctx, r.db).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.CommissionFactModel{}).Error
}
