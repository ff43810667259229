package organization

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
)

// CompanyType represents the tier of a company in the distribution hierarchy
type CompanyType string

const (
	CompanyTypeHeadquarters CompanyType = "HEADQUARTERS"
	CompanyTypeAgency       CompanyType = "AGENCY"
	CompanyTypeRetail       CompanyType = "RETAIL"
)

// IsValid checks if the company type is valid
func (t CompanyType) IsValid() bool {
	switch t {
	case CompanyTypeHeadquarters, CompanyTypeAgency, CompanyTypeRetail:
		return true
	}
	return false
}

// String returns the string representation of CompanyType
func (t CompanyType) String() string {
	return string(t)
}

// CanHaveParent returns true if companies of this type may sit below another company
func (t CompanyType) CanHaveParent() bool {
	return t != CompanyTypeHeadquarters
}

// Company represents one node in the distribution hierarchy
// (headquarters, agency/dealer, or retail shop)
type Company struct {
	shared.BaseAggregateRoot
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     CompanyType `json:"type"`
	ParentID *uuid.UUID  `json:"parent_id"`
	IsActive bool        `json:"is_active"`
	Remark   string      `json:"remark"`
}

// NewCompany creates a new company
func NewCompany(code, name string, companyType CompanyType, parentID *uuid.UUID) (*Company, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot exceed 30 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if !companyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COMPANY_TYPE", fmt.Sprintf("Company type %s is not valid", companyType))
	}
	if parentID != nil && !companyType.CanHaveParent() {
		return nil, shared.NewDomainError("INVALID_HIERARCHY", "Headquarters cannot have a parent company")
	}

	c := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              companyType,
		ParentID:          parentID,
		IsActive:          true,
	}

	c.AddDomainEvent(NewCompanyCreatedEvent(c))

	return c, nil
}

// HasParent returns true if the company sits below another company
func (c *Company) HasParent() bool {
	return c.ParentID != nil
}

// AttachTo moves the company under a new parent.
// The caller is responsible for rebuilding the ancestor closure afterwards.
func (c *Company) AttachTo(parentID uuid.UUID) error {
	if !c.Type.CanHaveParent() {
		return shared.NewDomainError("INVALID_HIERARCHY", "Headquarters cannot have a parent company")
	}
	if parentID == c.ID {
		return shared.NewDomainError("INVALID_HIERARCHY", "Company cannot be its own parent")
	}
	c.ParentID = &parentID
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCompanyHierarchyChangedEvent(c))
	return nil
}

// Detach removes the company from its parent
func (c *Company) Detach() {
	c.ParentID = nil
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCompanyHierarchyChangedEvent(c))
}

// Deactivate marks the company inactive
func (c *Company) Deactivate() {
	c.IsActive = false
	c.Touch()
	c.IncrementVersion()
}

// Activate marks the company active
func (c *Company) Activate() {
	c.IsActive = true
	c.Touch()
	c.IncrementVersion()
}
