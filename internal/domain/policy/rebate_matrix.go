package policy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RebateEntry is one cell of the rebate matrix: the base commission paid per
// order for a (carrier, plan range, contract period) combination under a
// policy.
type RebateEntry struct {
	shared.BaseEntity
	PolicyID       uuid.UUID       `json:"policy_id"`
	Carrier        Carrier         `json:"carrier"`
	PlanRange      PlanRange       `json:"plan_range"`
	ContractPeriod ContractPeriod  `json:"contract_period"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewRebateEntry creates a new rebate matrix entry
func NewRebateEntry(policyID uuid.UUID, carrier Carrier, planRange PlanRange, contractPeriod ContractPeriod, amount valueobject.Money) (*RebateEntry, error) {
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if !carrier.IsValid() {
		return nil, shared.NewDomainError("INVALID_CARRIER", fmt.Sprintf("Carrier %s is not valid", carrier))
	}
	if !planRange.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN_RANGE", fmt.Sprintf("Plan range %s is not valid", planRange))
	}
	if !contractPeriod.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTRACT_PERIOD", fmt.Sprintf("Contract period %d is not valid", contractPeriod))
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Rebate amount cannot be negative")
	}

	return &RebateEntry{
		BaseEntity:     shared.NewBaseEntity(),
		PolicyID:       policyID,
		Carrier:        carrier,
		PlanRange:      planRange,
		ContractPeriod: contractPeriod,
		Amount:         amount.Amount(),
	}, nil
}

// GetAmountMoney returns the rebate amount as Money
func (e *RebateEntry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKRW(e.Amount)
}

// RebateLookup resolves a base rebate amount from the matrix. The order
// subsystem is the caller's source for plan range and contract period.
type RebateLookup interface {
	Lookup(ctx context.Context, carrier Carrier, planRange PlanRange, contractPeriod ContractPeriod) (valueobject.Money, error)
}
