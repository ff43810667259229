package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GradeTrackingModel is the persistence model for CommissionGradeTracking.
// The natural key (company, policy, period type, period start) is unique.
type GradeTrackingModel struct {
	AggregateModel
	CompanyID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tracking_key,priority:1"`
	PolicyID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tracking_key,priority:2"`
	PeriodType         string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_tracking_key,priority:3"`
	PeriodStart        time.Time       `gorm:"not null;uniqueIndex:idx_tracking_key,priority:4"`
	PeriodEnd          time.Time       `gorm:"not null"`
	TargetOrders       int             `gorm:"not null"`
	CurrentOrders      int             `gorm:"not null;default:0"`
	AchievedGradeLevel int             `gorm:"not null;default:0"`
	RewardedGradeLevel int             `gorm:"not null;default:0"`
	BonusPerOrder      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalBonus         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive           bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (GradeTrackingModel) TableName() string {
	return "commission_grade_trackings"
}

// ToDomain converts the persistence model to a domain CommissionGradeTracking
func (m *GradeTrackingModel) ToDomain() *settlement.CommissionGradeTracking {
	return &settlement.CommissionGradeTracking{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		CompanyID:          m.CompanyID,
		PolicyID:           m.PolicyID,
		PeriodType:         valueobject.PeriodType(m.PeriodType),
		PeriodStart:        m.PeriodStart,
		PeriodEnd:          m.PeriodEnd,
		TargetOrders:       m.TargetOrders,
		CurrentOrders:      m.CurrentOrders,
		AchievedGradeLevel: m.AchievedGradeLevel,
		RewardedGradeLevel: m.RewardedGradeLevel,
		BonusPerOrder:      m.BonusPerOrder,
		TotalBonus:         m.TotalBonus,
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain CommissionGradeTracking
func (m *GradeTrackingModel) FromDomain(t *settlement.CommissionGradeTracking) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.CompanyID = t.CompanyID
	m.PolicyID = t.PolicyID
	m.PeriodType = string(t.PeriodType)
	m.PeriodStart = t.PeriodStart
	m.PeriodEnd = t.PeriodEnd
	m.TargetOrders = t.TargetOrders
	m.CurrentOrders = t.CurrentOrders
	m.AchievedGradeLevel = t.AchievedGradeLevel
	m.RewardedGradeLevel = t.RewardedGradeLevel
	m.BonusPerOrder = t.BonusPerOrder
	m.TotalBonus = t.TotalBonus
	m.IsActive = t.IsActive
}

// GradeHistoryModel is the persistence model for GradeAchievementHistory.
// Rows are append-only.
type GradeHistoryModel struct {
	BaseModel
	TrackingID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromLevel      int             `gorm:"not null"`
	ToLevel        int             `gorm:"not null"`
	OrdersAtChange int             `gorm:"not null"`
	BonusAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (GradeHistoryModel) TableName() string {
	return "grade_achievement_histories"
}

// ToDomain converts the persistence model to a domain GradeAchievementHistory
func (m *GradeHistoryModel) ToDomain() *settlement.GradeAchievementHistory {
	return &settlement.GradeAchievementHistory{
		BaseEntity:     m.BaseModel.ToDomain(),
		TrackingID:     m.TrackingID,
		FromLevel:      m.FromLevel,
		ToLevel:        m.ToLevel,
		OrdersAtChange: m.OrdersAtChange,
		BonusAmount:    m.BonusAmount,
	}
}

// FromDomain populates the persistence model from a domain GradeAchievementHistory
func (m *GradeHistoryModel) FromDomain(h *settlement.GradeAchievementHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.TrackingID = h.TrackingID
	m.FromLevel = h.FromLevel
	m.ToLevel = h.ToLevel
	m.OrdersAtChange = h.OrdersAtChange
	m.BonusAmount = h.BonusAmount
}
