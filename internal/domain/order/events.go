package order

import (
	"github.com/mobidist/backend/internal/domain/shared"
)

// EventTypeOrderSettleable is published by the order subsystem when an order
// reaches a settleable state (activated or completed).
const EventTypeOrderSettleable = "OrderSettleable"

// SettleableEvent carries the order snapshot at the moment it became
// settleable. The settlement core consumes it to open ledger rows.
type SettleableEvent struct {
	shared.BaseDomainEvent
	Order Snapshot `json:"order"`
}

// EventType returns the event type name
func (e *SettleableEvent) EventType() string {
	return EventTypeOrderSettleable
}

// NewSettleableEvent creates a new SettleableEvent
func NewSettleableEvent(snapshot Snapshot) *SettleableEvent {
	return &SettleableEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSettleable, "Order", snapshot.ID),
		Order:           snapshot,
	}
}

var _ shared.DomainEvent = (*SettleableEvent)(nil)
