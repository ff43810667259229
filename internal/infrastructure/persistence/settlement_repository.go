package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettlementRepository implements SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement by its ID
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the settlement under a row-level lock
func (r *GormSettlementRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
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

// FindByNumber finds a settlement by its settlement number
func (r *GormSettlementRepository) FindByNumber(ctx context.Context, settlementNumber string) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := dbFromContext(ctx, r.db).
		Where("settlement_number = ?", settlementNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds settlements matching the filter with a total count
func (r *GormSettlementRepository) FindAll(ctx context.Context, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	query := r.applyFilter(dbFromContext(ctx, r.db).Model(&models.SettlementModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var rows []models.SettlementModel
	if err := query.Order("created_at DESC, id").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	settlements := make([]settlement.Settlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements, total, nil
}

// ExistsForOrder reports whether any settlement exists for the order
func (r *GormSettlementRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.SettlementModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOrderAndCompany returns the settlement for the pair, or nil when none exists
func (r *GormSettlementRepository) FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
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

// FindByOrder returns all settlements created for one order
func (r *GormSettlementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	var rows []models.SettlementModel
	if err := dbFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	settlements := make([]settlement.Settlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements, nil
}

// CountQualifying counts settlements for (company, policy) created within
// [from, to) excluding cancelled rows.
func (r *GormSettlementRepository) CountQualifying(ctx context.Context, companyID, policyID uuid.UUID, from, to time.Time) (int, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.SettlementModel{}).
		Where("company_id = ? AND policy_id = ?", companyID, policyID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("status <> ?", settlement.SettlementStatusCancelled).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// FindCreatedBetween pages through settlements created in [from, to)
func (r *GormSettlementRepository) FindCreatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]settlement.Settlement, error) {
	var rows []models.SettlementModel
	if err := dbFromContext(ctx, r.db).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at, id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	settlements := make([]settlement.Settlement, len(rows))
	for i := range rows {
		settlements[i] = *rows[i].ToDomain()
	}
	return settlements, nil
}

// CountCreatedBetween counts settlements created in [from, to)
func (r *GormSettlementRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.SettlementModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateSettlementNumber issues the next settlement number.
// Format: STL-YYYYMMDD-NNNN (e.g. STL-20250801-0001)
func (r *GormSettlementRepository) GenerateSettlementNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("STL-%s-", time.Now().UTC().Format("20060102"))

	var last models.SettlementModel
	err := dbFromContext(ctx, r.db).
		Where("settlement_number LIKE ?", prefix+"%").
		Order("settlement_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.SettlementNumber != "" {
		parts := strings.Split(last.SettlementNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%04d", prefix, nextNum)

	exists, err := r.existsByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	for i := 0; exists && i < 100; i++ {
		nextNum++
		number = fmt.Sprintf("%s%04d", prefix, nextNum)
		exists, err = r.existsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
	}

	return number, nil
}

func (r *GormSettlementRepository) existsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.SettlementModel{}).
		Where("settlement_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a settlement
func (r *GormSettlementRepository) Save(ctx context.Context, stl *settlement.Settlement) error {
	var model models.SettlementModel
	model.FromDomain(stl)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

// SaveAll persists a batch of settlements
func (r *GormSettlementRepository) SaveAll(ctx context.Context, stls []*settlement.Settlement) error {
	if len(stls) == 0 {
		return nil
	}
	rows := make([]models.SettlementModel, len(stls))
	for i, stl := range stls {
		rows[i].FromDomain(stl)
	}
	return dbFromContext(ctx, r.db).Save(&rows).Error
}

// applyFilter applies filter options to the query
func (r *GormSettlementRepository) applyFilter(query *gorm.DB, filter settlement.SettlementFilter) *gorm.DB {
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.PolicyID != nil {
		query = query.Where("policy_id = ?", *filter.PolicyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}
	return query
}
