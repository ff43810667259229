package settlement

import (
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names for grade bonus settlements
const (
	EventTypeGradeBonusCreated  = "GradeBonusSettlementCreated"
	EventTypeGradeBonusApproved = "GradeBonusSettlementApproved"
	EventTypeGradeBonusPaid     = "GradeBonusSettlementPaid"
)

// GradeBonusCreatedEvent is raised when a bonus settlement is opened
type GradeBonusCreatedEvent struct {
	shared.BaseDomainEvent
	BonusSettlementID uuid.UUID       `json:"bonus_settlement_id"`
	TrackingID        uuid.UUID       `json:"tracking_id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	GradeLevel        int             `json:"grade_level"`
	BonusAmount       decimal.Decimal `json:"bonus_amount"`
}

// EventType returns the event type name
func (e *GradeBonusCreatedEvent) EventType() string {
	return EventTypeGradeBonusCreated
}

// NewGradeBonusCreatedEvent creates a new GradeBonusCreatedEvent
func NewGradeBonusCreatedEvent(b *GradeBonusSettlement) *GradeBonusCreatedEvent {
	return &GradeBonusCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeGradeBonusCreated, "GradeBonusSettlement", b.ID),
		BonusSettlementID: b.ID,
		TrackingID:        b.TrackingID,
		CompanyID:         b.CompanyID,
		GradeLevel:        b.GradeLevel,
		BonusAmount:       b.BonusAmount,
	}
}

// GradeBonusApprovedEvent is raised when a bonus settlement is approved.
// The tracking's rewarded-level floor is raised in response.
type GradeBonusApprovedEvent struct {
	shared.BaseDomainEvent
	BonusSettlementID uuid.UUID       `json:"bonus_settlement_id"`
	TrackingID        uuid.UUID       `json:"tracking_id"`
	GradeLevel        int             `json:"grade_level"`
	BonusAmount       decimal.Decimal `json:"bonus_amount"`
}

// EventType returns the event type name
func (e *GradeBonusApprovedEvent) EventType() string {
	return EventTypeGradeBonusApproved
}

// NewGradeBonusApprovedEvent creates a new GradeBonusApprovedEvent
func NewGradeBonusApprovedEvent(b *GradeBonusSettlement) *GradeBonusApprovedEvent {
	return &GradeBonusApprovedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeGradeBonusApproved, "GradeBonusSettlement", b.ID),
		BonusSettlementID: b.ID,
		TrackingID:        b.TrackingID,
		GradeLevel:        b.GradeLevel,
		BonusAmount:       b.BonusAmount,
	}
}

// GradeBonusPaidEvent is raised when a bonus settlement is disbursed
type GradeBonusPaidEvent struct {
	shared.BaseDomainEvent
	BonusSettlementID uuid.UUID       `json:"bonus_settlement_id"`
	TrackingID        uuid.UUID       `json:"tracking_id"`
	BonusAmount       decimal.Decimal `json:"bonus_amount"`
}

// EventType returns the event type name
func (e *GradeBonusPaidEvent) EventType() string {
	return EventTypeGradeBonusPaid
}

// NewGradeBonusPaidEvent creates a new GradeBonusPaidEvent
func NewGradeBonusPaidEvent(b *GradeBonusSettlement) *GradeBonusPaidEvent {
	return &GradeBonusPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeGradeBonusPaid, "GradeBonusSettlement", b.ID),
		BonusSettlementID: b.ID,
		TrackingID:        b.TrackingID,
		BonusAmount:       b.BonusAmount,
	}
}
