// Package order defines the read-side contract this settlement core consumes
// from the order subsystem. The order state machine itself lives elsewhere;
// the core only sees snapshots of orders that reached a settleable state.
package order

import (
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status is the order state as reported by the order subsystem
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusActivated Status = "ACTIVATED" // line activated at the carrier
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusReceived, StatusActivated, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsSettleable reports whether an order in this state may be settled
func (s Status) IsSettleable() bool {
	return s == StatusActivated || s == StatusCompleted
}

// Snapshot is the settlement-relevant projection of one order
type Snapshot struct {
	ID             uuid.UUID             `json:"id"`
	OrderNumber    string                `json:"order_number"`
	CompanyID      uuid.UUID             `json:"company_id"`
	PolicyID       uuid.UUID             `json:"policy_id"`
	PlanRange      policy.PlanRange      `json:"plan_range"`
	ContractPeriod policy.ContractPeriod `json:"contract_period"`
	RebateAmount   decimal.Decimal       `json:"rebate_amount"`
	Status         Status                `json:"status"`
}

// Validate checks the snapshot carries everything settlement creation needs
func (s *Snapshot) Validate() error {
	if s.ID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if s.OrderNumber == "" {
		return shared.NewDomainError("INVALID_ORDER", "Order number cannot be empty")
	}
	if s.CompanyID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order company cannot be empty")
	}
	if s.PolicyID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order policy cannot be empty")
	}
	if !s.Status.IsValid() {
		return shared.NewDomainError("INVALID_ORDER", "Order status is not valid")
	}
	if s.RebateAmount.IsNegative() {
		return shared.NewDomainError("INVALID_ORDER", "Order rebate amount cannot be negative")
	}
	return nil
}

// IsSettleable reports whether the order may be settled
func (s *Snapshot) IsSettleable() bool {
	return s.Status.IsSettleable()
}

// GetRebateAmountMoney returns the rebate amount as Money
func (s *Snapshot) GetRebateAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKRW(s.RebateAmount)
}
