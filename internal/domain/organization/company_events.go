package organization

import (
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
)

// Event type names for the organization domain
const (
	EventTypeCompanyCreated          = "CompanyCreated"
	EventTypeCompanyHierarchyChanged = "CompanyHierarchyChanged"
)

// CompanyCreatedEvent is raised when a new company is registered
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID   uuid.UUID   `json:"company_id"`
	CompanyCode string      `json:"company_code"`
	CompanyName string      `json:"company_name"`
	CompanyType CompanyType `json:"company_type"`
	ParentID    *uuid.UUID  `json:"parent_id,omitempty"`
}

// EventType returns the event type name
func (e *CompanyCreatedEvent) EventType() string {
	return EventTypeCompanyCreated
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, "Company", c.ID),
		CompanyID:       c.ID,
		CompanyCode:     c.Code,
		CompanyName:     c.Name,
		CompanyType:     c.Type,
		ParentID:        c.ParentID,
	}
}

// CompanyHierarchyChangedEvent is raised when a company is attached to or
// detached from a parent. Consumers must rebuild the ancestor closure and
// invalidate hierarchy caches.
type CompanyHierarchyChangedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID  `json:"company_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
}

// EventType returns the event type name
func (e *CompanyHierarchyChangedEvent) EventType() string {
	return EventTypeCompanyHierarchyChanged
}

// NewCompanyHierarchyChangedEvent creates a new CompanyHierarchyChangedEvent
func NewCompanyHierarchyChangedEvent(c *Company) *CompanyHierarchyChangedEvent {
	return &CompanyHierarchyChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyHierarchyChanged, "Company", c.ID),
		CompanyID:       c.ID,
		ParentID:        c.ParentID,
	}
}
