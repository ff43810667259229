package policy

import (
	"fmt"
	"time"

	"github.com/mobidist/backend/internal/domain/shared"
)

// Carrier represents a mobile network operator
type Carrier string

const (
	CarrierSKT Carrier = "SKT"
	CarrierKT  Carrier = "KT"
	CarrierLGU Carrier = "LGU"
)

// IsValid checks if the carrier is valid
func (c Carrier) IsValid() bool {
	switch c {
	case CarrierSKT, CarrierKT, CarrierLGU:
		return true
	}
	return false
}

// String returns the string representation of Carrier
func (c Carrier) String() string {
	return string(c)
}

// PlanRange represents a monthly plan price band (KRW)
type PlanRange string

const (
	PlanRangeUnder33K PlanRange = "UNDER_33K"
	PlanRange33To69K  PlanRange = "33K_TO_69K"
	PlanRange69To95K  PlanRange = "69K_TO_95K"
	PlanRangeOver95K  PlanRange = "OVER_95K"
)

// IsValid checks if the plan range is valid
func (p PlanRange) IsValid() bool {
	switch p {
	case PlanRangeUnder33K, PlanRange33To69K, PlanRange69To95K, PlanRangeOver95K:
		return true
	}
	return false
}

// String returns the string representation of PlanRange
func (p PlanRange) String() string {
	return string(p)
}

// ContractPeriod is the subscription commitment length in months
type ContractPeriod int

const (
	ContractPeriod12 ContractPeriod = 12
	ContractPeriod24 ContractPeriod = 24
	ContractPeriod36 ContractPeriod = 36
)

// IsValid checks if the contract period is valid
func (c ContractPeriod) IsValid() bool {
	return c == ContractPeriod12 || c == ContractPeriod24 || c == ContractPeriod36
}

// Policy is a commission policy published by headquarters for one carrier.
// It carries the grade schedule used for achievement bonuses; the per-order
// base rebate comes from the rebate matrix.
type Policy struct {
	shared.BaseAggregateRoot
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Carrier     Carrier    `json:"carrier"`
	Description string     `json:"description"`
	GradeTiers  GradeTiers `json:"grade_tiers"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
	IsActive    bool       `json:"is_active"`
}

// NewPolicy creates a new commission policy
func NewPolicy(code, name string, carrier Carrier, gradeTiers GradeTiers, validFrom time.Time, validTo *time.Time) (*Policy, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_POLICY_CODE", "Policy code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_POLICY_CODE", "Policy code cannot exceed 30 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_POLICY_NAME", "Policy name cannot be empty")
	}
	if !carrier.IsValid() {
		return nil, shared.NewDomainError("INVALID_CARRIER", fmt.Sprintf("Carrier %s is not valid", carrier))
	}
	if err := gradeTiers.Validate(); err != nil {
		return nil, err
	}
	if validTo != nil && !validTo.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_POLICY_WINDOW", "Policy valid_to must be after valid_from")
	}

	return &Policy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Carrier:           carrier,
		GradeTiers:        gradeTiers,
		ValidFrom:         validFrom,
		ValidTo:           validTo,
		IsActive:          true,
	}, nil
}

// IsEffectiveAt reports whether the policy is active and within its window at t
func (p *Policy) IsEffectiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if t.Before(p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && !t.Before(*p.ValidTo) {
		return false
	}
	return true
}

// UpdateGradeTiers replaces the grade schedule
func (p *Policy) UpdateGradeTiers(tiers GradeTiers) error {
	if err := tiers.Validate(); err != nil {
		return err
	}
	p.GradeTiers = tiers
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Deactivate retires the policy
func (p *Policy) Deactivate() {
	p.IsActive = false
	p.Touch()
	p.IncrementVersion()
}
