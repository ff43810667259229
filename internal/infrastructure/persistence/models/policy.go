package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// PolicyModel is the persistence model for the commission Policy.
// The grade schedule is stored as JSONB via GradeTiers' Scanner/Valuer.
type PolicyModel struct {
	AggregateModel
	Code        string            `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name        string            `gorm:"type:varchar(200);not null"`
	Carrier     string            `gorm:"type:varchar(10);not null;index"`
	Description string            `gorm:"type:text"`
	GradeTiers  policy.GradeTiers `gorm:"type:jsonb;not null;default:'[]'"`
	ValidFrom   time.Time         `gorm:"not null"`
	ValidTo     *time.Time
	IsActive    bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PolicyModel) TableName() string {
	return "commission_policies"
}

// ToDomain converts the persistence model to a domain Policy
func (m *PolicyModel) ToDomain() *policy.Policy {
	return &policy.Policy{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Carrier:           policy.Carrier(m.Carrier),
		Description:       m.Description,
		GradeTiers:        m.GradeTiers,
		ValidFrom:         m.ValidFrom,
		ValidTo:           m.ValidTo,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Policy
func (m *PolicyModel) FromDomain(p *policy.Policy) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Carrier = string(p.Carrier)
	m.Description = p.Description
	m.GradeTiers = p.GradeTiers
	m.ValidFrom = p.ValidFrom
	m.ValidTo = p.ValidTo
	m.IsActive = p.IsActive
}

// RebateEntryModel is the persistence model for one rebate matrix cell.
type RebateEntryModel struct {
	BaseModel
	PolicyID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_rebate_key,priority:1"`
	Carrier        string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_rebate_key,priority:2"`
	PlanRange      string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_rebate_key,priority:3"`
	ContractPeriod int             `gorm:"not null;uniqueIndex:idx_rebate_key,priority:4"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (RebateEntryModel) TableName() string {
	return "rebate_matrix_entries"
}

// ToDomain converts the persistence model to a domain RebateEntry
func (m *RebateEntryModel) ToDomain() *policy.RebateEntry {
	return &policy.RebateEntry{
		BaseEntity:     m.BaseModel.ToDomain(),
		PolicyID:       m.PolicyID,
		Carrier:        policy.Carrier(m.Carrier),
		PlanRange:      policy.PlanRange(m.PlanRange),
		ContractPeriod: policy.ContractPeriod(m.ContractPeriod),
		Amount:         m.Amount,
	}
}

// FromDomain populates the persistence model from a domain RebateEntry
func (m *RebateEntryModel) FromDomain(e *policy.RebateEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.PolicyID = e.PolicyID
	m.Carrier = string(e.Carrier)
	m.PlanRange = string(e.PlanRange)
	m.ContractPeriod = int(e.ContractPeriod)
	m.Amount = e.Amount
}

// SplitRuleModel is the persistence model for one commission split rule.
type SplitRuleModel struct {
	CompanyType    string    `gorm:"type:varchar(20);primaryKey"`
	OwnShareBps    int       `gorm:"not null"`
	ParentShareBps int       `gorm:"not null"`
	IsActive       bool      `gorm:"not null;default:true"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SplitRuleModel) TableName() string {
	return "commission_split_rules"
}

// ToDomain converts the persistence model to a domain SplitRule
func (m *SplitRuleModel) ToDomain() policy.SplitRule {
	return policy.SplitRule{
		CompanyType:    organization.CompanyType(m.CompanyType),
		OwnShareBps:    m.OwnShareBps,
		ParentShareBps: m.ParentShareBps,
	}
}

// FromDomain populates the persistence model from a domain SplitRule
func (m *SplitRuleModel) FromDomain(r policy.SplitRule) {
	m.CompanyType = string(r.CompanyType)
	m.OwnShareBps = r.OwnShareBps
	m.ParentShareBps = r.ParentShareBps
	m.IsActive = true
	m.UpdatedAt = time.Now()
}
