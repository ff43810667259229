package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Company, error) {
	var model models.CompanyModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a company by its code
func (r *GormCompanyRepository) FindByCode(ctx context.Context, code string) (*organization.Company, error) {
	var model models.CompanyModel
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

// FindAll finds companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter organization.CompanyFilter) ([]organization.Company, error) {
	query := dbFromContext(ctx, r.db).Model(&models.CompanyModel{})

	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
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

	var rows []models.CompanyModel
	if err := query.Order("code").Find(&rows).Error; err != nil {
		return nil, err
	}
	companies := make([]organization.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// FindChildren finds the direct children of a company
func (r *GormCompanyRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]organization.Company, error) {
	var rows []models.CompanyModel
	if err := dbFromContext(ctx, r.db).
		Where("parent_id = ?", parentID).
		Order("code").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	companies := make([]organization.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *organization.Company) error {
	var model models.CompanyModel
	model.FromDomain(company)
	return dbFromContext(ctx, r.db).Save(&model).Error
}

// AncestryOf returns the closure rows for a company ordered by depth ascending
func (r *GormCompanyRepository) AncestryOf(ctx context.Context, companyID uuid.UUID) ([]organization.CompanyAncestor, error) {
	var rows []models.CompanyAncestorModel
	if err := dbFromContext(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("depth").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ancestry := make([]organization.CompanyAncestor, len(rows))
	for i := range rows {
		ancestry[i] = rows[i].ToDomain()
	}
	return ancestry, nil
}

// ReplaceAncestry atomically replaces the closure rows for a company
func (r *GormCompanyRepository) ReplaceAncestry(ctx context.Context, companyID uuid.UUID, ancestry []organization.CompanyAncestor) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", companyID).
			Delete(&models.CompanyAncestorModel{}).Error; err != nil {
			return err
		}
		if len(ancestry) == 0 {
			return nil
		}
		rows := make([]models.CompanyAncestorModel, len(ancestry))
		for i, a := range ancestry {
			rows[i].FromDomain(a)
		}
		return tx.Create(&rows).Error
	})
}
