package models

import (
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
)

// CompanyModel is the persistence model for the Company hierarchy node.
type CompanyModel struct {
	AggregateModel
	Code     string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Type     string     `gorm:"type:varchar(20);not null;index"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive bool       `gorm:"not null;default:true;index"`
	Remark   string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *organization.Company {
	return &organization.Company{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              organization.CompanyType(m.Type),
		ParentID:          m.ParentID,
		IsActive:          m.IsActive,
		Remark:            m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Company
func (m *CompanyModel) FromDomain(c *organization.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Type = string(c.Type)
	m.ParentID = c.ParentID
	m.IsActive = c.IsActive
	m.Remark = c.Remark
}

// CompanyAncestorModel is one row of the precomputed ancestor closure.
type CompanyAncestorModel struct {
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;primaryKey"`
	AncestorID uuid.UUID `gorm:"type:uuid;not null;primaryKey"`
	Depth      int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CompanyAncestorModel) TableName() string {
	return "company_ancestors"
}

// ToDomain converts the persistence model to a domain CompanyAncestor
func (m *CompanyAncestorModel) ToDomain() organization.CompanyAncestor {
	return organization.CompanyAncestor{
		CompanyID:  m.CompanyID,
		AncestorID: m.AncestorID,
		Depth:      m.Depth,
	}
}

// FromDomain populates the persistence model from a domain CompanyAncestor
func (m *CompanyAncestorModel) FromDomain(a organization.CompanyAncestor) {
	m.CompanyID = a.CompanyID
	m.AncestorID = a.AncestorID
	m.Depth = a.Depth
}
