package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names for the settlement domain
const (
	EventTypeSettlementCreated      = "SettlementCreated"
	EventTypeSettlementApproved     = "SettlementApproved"
	EventTypeSettlementPaid         = "SettlementPaid"
	EventTypeSettlementMarkedUnpaid = "SettlementMarkedUnpaid"
	EventTypeSettlementCancelled    = "SettlementCancelled"
)

// SettlementCreatedEvent is raised when a new settlement row is opened
type SettlementCreatedEvent struct {
	shared.BaseDomainEvent
	SettlementID     uuid.UUID       `json:"settlement_id"`
	SettlementNumber string          `json:"settlement_number"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	CompanyID        uuid.UUID       `json:"company_id"`
	CompanyName      string          `json:"company_name"`
	PolicyID         uuid.UUID       `json:"policy_id"`
	RebateAmount     decimal.Decimal `json:"rebate_amount"`
}

// EventType returns the event type name
func (e *SettlementCreatedEvent) EventType() string {
	return EventTypeSettlementCreated
}

// NewSettlementCreatedEvent creates a new SettlementCreatedEvent
func NewSettlementCreatedEvent(s *Settlement) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSettlementCreated, "Settlement", s.ID),
		SettlementID:     s.ID,
		SettlementNumber: s.SettlementNumber,
		OrderID:          s.OrderID,
		OrderNumber:      s.OrderNumber,
		CompanyID:        s.CompanyID,
		CompanyName:      s.CompanyName,
		PolicyID:         s.PolicyID,
		RebateAmount:     s.RebateAmount,
	}
}

// SettlementApprovedEvent is raised when a settlement is approved for payout
type SettlementApprovedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID       `json:"settlement_id"`
	CompanyID    uuid.UUID       `json:"company_id"`
	ApproverID   uuid.UUID       `json:"approver_id"`
	RebateAmount decimal.Decimal `json:"rebate_amount"`
	ApprovedAt   time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *SettlementApprovedEvent) EventType() string {
	return EventTypeSettlementApproved
}

// NewSettlementApprovedEvent creates a new SettlementApprovedEvent
func NewSettlementApprovedEvent(s *Settlement) *SettlementApprovedEvent {
	e := &SettlementApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementApproved, "Settlement", s.ID),
		SettlementID:    s.ID,
		CompanyID:       s.CompanyID,
		RebateAmount:    s.RebateAmount,
	}
	if s.ApproverID != nil {
		e.ApproverID = *s.ApproverID
	}
	if s.ApprovedAt != nil {
		e.ApprovedAt = *s.ApprovedAt
	}
	return e
}

// SettlementPaidEvent is raised when a settlement is disbursed
type SettlementPaidEvent struct {
	shared.BaseDomainEvent
	SettlementID     uuid.UUID       `json:"settlement_id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	RebateAmount     decimal.Decimal `json:"rebate_amount"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *SettlementPaidEvent) EventType() string {
	return EventTypeSettlementPaid
}

// NewSettlementPaidEvent creates a new SettlementPaidEvent
func NewSettlementPaidEvent(s *Settlement) *SettlementPaidEvent {
	e := &SettlementPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSettlementPaid, "Settlement", s.ID),
		SettlementID:     s.ID,
		CompanyID:        s.CompanyID,
		RebateAmount:     s.RebateAmount,
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
	}
	if s.PaidAt != nil {
		e.PaidAt = *s.PaidAt
	}
	return e
}

// SettlementMarkedUnpaidEvent is raised when a payout attempt fails
type SettlementMarkedUnpaidEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID `json:"settlement_id"`
	CompanyID    uuid.UUID `json:"company_id"`
	Reason       string    `json:"reason"`
}

// EventType returns the event type name
func (e *SettlementMarkedUnpaidEvent) EventType() string {
	return EventTypeSettlementMarkedUnpaid
}

// NewSettlementMarkedUnpaidEvent creates a new SettlementMarkedUnpaidEvent
func NewSettlementMarkedUnpaidEvent(s *Settlement, reason string) *SettlementMarkedUnpaidEvent {
	return &SettlementMarkedUnpaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementMarkedUnpaid, "Settlement", s.ID),
		SettlementID:    s.ID,
		CompanyID:       s.CompanyID,
		Reason:          reason,
	}
}

// SettlementCancelledEvent is raised when a settlement is voided.
// Grade tracking consumers must recount qualifying orders for the
// settlement's company and policy.
type SettlementCancelledEvent struct {
	shared.BaseDomainEvent
	SettlementID   uuid.UUID        `json:"settlement_id"`
	OrderID        uuid.UUID        `json:"order_id"`
	CompanyID      uuid.UUID        `json:"company_id"`
	PolicyID       uuid.UUID        `json:"policy_id"`
	PreviousStatus SettlementStatus `json:"previous_status"`
	CancelReason   string           `json:"cancel_reason"`
}

// EventType returns the event type name
func (e *SettlementCancelledEvent) EventType() string {
	return EventTypeSettlementCancelled
}

// NewSettlementCancelledEvent creates a new SettlementCancelledEvent
func NewSettlementCancelledEvent(s *Settlement, previousStatus SettlementStatus) *SettlementCancelledEvent {
	return &SettlementCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCancelled, "Settlement", s.ID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		CompanyID:       s.CompanyID,
		PolicyID:        s.PolicyID,
		PreviousStatus:  previousStatus,
		CancelReason:    s.CancelReason,
	}
}
