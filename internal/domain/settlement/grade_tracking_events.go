package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Event type names for grade tracking
const (
	EventTypeGradeLevelAchieved = "GradeLevelAchieved"
)

// GradeLevelAchievedEvent is raised when a tracking's achieved level rises.
// The bonus flow listens for it to create or update the bonus settlement.
type GradeLevelAchievedEvent struct {
	shared.BaseDomainEvent
	TrackingID     uuid.UUID              `json:"tracking_id"`
	CompanyID      uuid.UUID              `json:"company_id"`
	PolicyID       uuid.UUID              `json:"policy_id"`
	PeriodType     valueobject.PeriodType `json:"period_type"`
	PeriodStart    time.Time              `json:"period_start"`
	FromLevel      int                    `json:"from_level"`
	ToLevel        int                    `json:"to_level"`
	OrdersAtChange int                    `json:"orders_at_change"`
	TotalBonus     decimal.Decimal        `json:"total_bonus"`
}

// EventType returns the event type name
func (e *GradeLevelAchievedEvent) EventType() string {
	return EventTypeGradeLevelAchieved
}

// NewGradeLevelAchievedEvent creates a new GradeLevelAchievedEvent
func NewGradeLevelAchievedEvent(t *CommissionGradeTracking, transition *GradeTransition) *GradeLevelAchievedEvent {
	return &GradeLevelAchievedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGradeLevelAchieved, "CommissionGradeTracking", t.ID),
		TrackingID:      t.ID,
		CompanyID:       t.CompanyID,
		PolicyID:        t.PolicyID,
		PeriodType:      t.PeriodType,
		PeriodStart:     t.PeriodStart,
		FromLevel:       transition.FromLevel,
		ToLevel:         transition.ToLevel,
		OrdersAtChange:  transition.OrdersAtChange,
		TotalBonus:      transition.TotalBonus,
	}
}
