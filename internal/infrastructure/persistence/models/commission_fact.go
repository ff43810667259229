package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// CommissionFactModel is the persistence model for the analytical fact
// projection. One row per (order, company) pair; the whole table can be
// truncated and rebuilt from the ledger.
type CommissionFactModel struct {
	BaseModel
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fact_order_company,priority:1"`
	OrderNumber        string          `gorm:"type:varchar(50);not null"`
	CompanyID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_fact_order_company,priority:2;index"`
	CompanyName        string          `gorm:"type:varchar(200);not null"`
	PolicyID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	DateKey            time.Time       `gorm:"not null;index"`
	Carrier            string          `gorm:"type:varchar(10);not null;index"`
	PlanRange          string          `gorm:"type:varchar(20);not null"`
	ContractPeriod     int             `gorm:"not null"`
	BaseCommission     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GradeBonus         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCommission    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SettlementStatus   string          `gorm:"type:varchar(20);not null;index"`
	PaymentStatus      string          `gorm:"type:varchar(20);not null;index"`
	OrderCountInPeriod int             `gorm:"not null;default:0"`
	AchievedGradeLevel int             `gorm:"not null;default:0"`
	BatchID            string          `gorm:"type:varchar(40);not null;index"`
}

// TableName returns the table name for GORM
func (CommissionFactModel) TableName() string {
	return "commission_facts"
}

// ToDomain converts the persistence model to a domain CommissionFact
func (m *CommissionFactModel) ToDomain() *settlement.CommissionFact {
	return &settlement.CommissionFact{
		BaseEntity:         m.BaseModel.ToDomain(),
		OrderID:            m.OrderID,
		OrderNumber:        m.OrderNumber,
		CompanyID:          m.CompanyID,
		CompanyName:        m.CompanyName,
		PolicyID:           m.PolicyID,
		DateKey:            m.DateKey,
		Carrier:            policy.Carrier(m.Carrier),
		PlanRange:          policy.PlanRange(m.PlanRange),
		ContractPeriod:     policy.ContractPeriod(m.ContractPeriod),
		BaseCommission:     m.BaseCommission,
		GradeBonus:         m.GradeBonus,
		TotalCommission:    m.TotalCommission,
		SettlementStatus:   settlement.SettlementStatus(m.SettlementStatus),
		PaymentStatus:      settlement.PaymentStatus(m.PaymentStatus),
		OrderCountInPeriod: m.OrderCountInPeriod,
		AchievedGradeLevel: m.AchievedGradeLevel,
		BatchID:            m.BatchID,
	}
}

// FromDomain populates the persistence model from a domain CommissionFact
func (m *CommissionFactModel) FromDomain(f *settlement.CommissionFact) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.OrderID = f.OrderID
	m.OrderNumber = f.OrderNumber
	m.CompanyID = f.CompanyID
	m.CompanyName = f.CompanyName
	m.PolicyID = f.PolicyID
	m.DateKey = f.DateKey
	m.Carrier = string(f.Carrier)
	m.PlanRange = string(f.PlanRange)
	m.ContractPeriod = int(f.ContractPeriod)
	m.BaseCommission = f.BaseCommission
	m.GradeBonus = f.GradeBonus
	m.TotalCommission = f.TotalCommission
	m.SettlementStatus = string(f.SettlementStatus)
	m.PaymentStatus = string(f.PaymentStatus)
	m.OrderCountInPeriod = f.OrderCountInPeriod
	m.AchievedGradeLevel = f.AchievedGradeLevel
	m.BatchID = f.BatchID
}
