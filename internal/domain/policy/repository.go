package policy

import (
	"context"

	"github.com/google/uuid"
)

// PolicyFilter holds query options for policies
type PolicyFilter struct {
	Carrier  *Carrier
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

// PolicyRepository persists commission policies
type PolicyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	FindByCode(ctx context.Context, code string) (*Policy, error)
	FindAll(ctx context.Context, filter PolicyFilter) ([]Policy, error)
	Save(ctx context.Context, policy *Policy) error
}

// RebateMatrixRepository persists rebate matrix entries
type RebateMatrixRepository interface {
	FindByKey(ctx context.Context, carrier Carrier, planRange PlanRange, contractPeriod ContractPeriod) (*RebateEntry, error)
	FindByPolicy(ctx context.Context, policyID uuid.UUID) ([]RebateEntry, error)
	Save(ctx context.Context, entry *RebateEntry) error
}

// SplitRuleRepository loads the commission split configuration
type SplitRuleRepository interface {
	// LoadSplitPolicy loads all active split rules as a SplitPolicy
	LoadSplitPolicy(ctx context.Context) (*SplitPolicy, error)
	SaveRule(ctx context.Context, rule SplitRule) error
}
