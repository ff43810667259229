package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// SettlementModel is the persistence model for the Settlement ledger row.
type SettlementModel struct {
	AggregateModel
	SettlementNumber string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID          uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_order_company,priority:1"`
	OrderNumber      string                      `gorm:"type:varchar(50);not null;index"`
	CompanyID        uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_settlement_order_company,priority:2;index"`
	CompanyName      string                      `gorm:"type:varchar(200);not null"`
	PolicyID         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	RebateAmount     decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status           settlement.SettlementStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApproverID       *uuid.UUID                  `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	PaymentMethod    string `gorm:"type:varchar(20)"`
	PaymentReference string `gorm:"type:varchar(100)"`
	PaidAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:text"`
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement
func (m *SettlementModel) ToDomain() *settlement.Settlement {
	return &settlement.Settlement{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SettlementNumber:  m.SettlementNumber,
		OrderID:           m.OrderID,
		OrderNumber:       m.OrderNumber,
		CompanyID:         m.CompanyID,
		CompanyName:       m.CompanyName,
		PolicyID:          m.PolicyID,
		RebateAmount:      m.RebateAmount,
		Status:            m.Status,
		ApproverID:        m.ApproverID,
		ApprovedAt:        m.ApprovedAt,
		PaymentMethod:     settlement.PaymentMethod(m.PaymentMethod),
		PaymentReference:  m.PaymentReference,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Settlement
func (m *SettlementModel) FromDomain(s *settlement.Settlement) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.SettlementNumber = s.SettlementNumber
	m.OrderID = s.OrderID
	m.OrderNumber = s.OrderNumber
	m.CompanyID = s.CompanyID
	m.CompanyName = s.CompanyName
	m.PolicyID = s.PolicyID
	m.RebateAmount = s.RebateAmount
	m.Status = s.Status
	m.ApproverID = s.ApproverID
	m.ApprovedAt = s.ApprovedAt
	m.PaymentMethod = string(s.PaymentMethod)
	m.PaymentReference = s.PaymentReference
	m.PaidAt = s.PaidAt
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason
	m.Notes = s.Notes
}

// GradeBonusModel is the persistence model for the GradeBonusSettlement ledger row.
type GradeBonusModel struct {
	AggregateModel
	TrackingID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CompanyID        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PolicyID         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	GradeLevel       int                         `gorm:"not null"`
	BonusAmount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Status           settlement.SettlementStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApproverID       *uuid.UUID                  `gorm:"type:uuid"`
	ApprovedAt       *time.Time
	PaymentMethod    string `gorm:"type:varchar(20)"`
	PaymentReference string `gorm:"type:varchar(100)"`
	PaidAt           *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:text"`
	Notes            string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (GradeBonusModel) TableName() string {
	return "grade_bonus_settlements"
}

// ToDomain converts the persistence model to a domain GradeBonusSettlement
func (m *GradeBonusModel) ToDomain() *settlement.GradeBonusSettlement {
	return &settlement.GradeBonusSettlement{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TrackingID:        m.TrackingID,
		CompanyID:         m.CompanyID,
		PolicyID:          m.PolicyID,
		GradeLevel:        m.GradeLevel,
		BonusAmount:       m.BonusAmount,
		Status:            m.Status,
		ApproverID:        m.ApproverID,
		ApprovedAt:        m.ApprovedAt,
		PaymentMethod:     settlement.PaymentMethod(m.PaymentMethod),
		PaymentReference:  m.PaymentReference,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain GradeBonusSettlement
func (m *GradeBonusModel) FromDomain(b *settlement.GradeBonusSettlement) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.TrackingID = b.TrackingID
	m.CompanyID = b.CompanyID
	m.PolicyID = b.PolicyID
	m.GradeLevel = b.GradeLevel
	m.BonusAmount = b.BonusAmount
	m.Status = b.Status
	m.ApproverID = b.ApproverID
	m.ApprovedAt = b.ApprovedAt
	m.PaymentMethod = string(b.PaymentMethod)
	m.PaymentReference = b.PaymentReference
	m.PaidAt = b.PaidAt
	m.CancelledAt = b.CancelledAt
	m.CancelReason = b.CancelReason
	m.Notes = b.Notes
}
