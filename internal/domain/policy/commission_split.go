package policy

import (
	"fmt"

	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const bpsScale = 10000

// SplitRule defines how the rebate for an order originating at a company of
// the given type is divided between that company and its direct parent.
// Shares are basis points; OwnShareBps + ParentShareBps must equal 10000.
type SplitRule struct {
	CompanyType    organization.CompanyType `json:"company_type"`
	OwnShareBps    int                      `json:"own_share_bps"`
	ParentShareBps int                      `json:"parent_share_bps"`
}

// Validate checks the rule is internally consistent
func (r SplitRule) Validate() error {
	if !r.CompanyType.IsValid() {
		return shared.NewDomainError("INVALID_SPLIT_RULE", fmt.Sprintf("Company type %s is not valid", r.CompanyType))
	}
	if r.OwnShareBps < 0 || r.ParentShareBps < 0 {
		return shared.NewDomainError("INVALID_SPLIT_RULE", "Split shares cannot be negative")
	}
	if r.OwnShareBps+r.ParentShareBps != bpsScale {
		return shared.NewDomainError("INVALID_SPLIT_RULE",
			fmt.Sprintf("Split shares must sum to %d basis points, got %d", bpsScale, r.OwnShareBps+r.ParentShareBps))
	}
	return nil
}

// SplitPolicy is the set of split rules keyed by originating company type.
// It is configuration data loaded from the split table, never hardcoded at
// settlement-creation sites.
type SplitPolicy struct {
	rules map[organization.CompanyType]SplitRule
}

// NewSplitPolicy builds a split policy from rules, validating each
func NewSplitPolicy(rules ...SplitRule) (*SplitPolicy, error) {
	p := &SplitPolicy{rules: make(map[organization.CompanyType]SplitRule, len(rules))}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, exists := p.rules[r.CompanyType]; exists {
			return nil, shared.NewDomainError("INVALID_SPLIT_RULE",
				fmt.Sprintf("Duplicate split rule for company type %s", r.CompanyType))
		}
		p.rules[r.CompanyType] = r
	}
	return p, nil
}

// DefaultSplitPolicy returns the platform default: retail orders split 70/30
// with the parent agency, agency and headquarters orders keep the full amount.
func DefaultSplitPolicy() *SplitPolicy {
	p, _ := NewSplitPolicy(
		SplitRule{CompanyType: organization.CompanyTypeRetail, OwnShareBps: 7000, ParentShareBps: 3000},
		SplitRule{CompanyType: organization.CompanyTypeAgency, OwnShareBps: bpsScale, ParentShareBps: 0},
		SplitRule{CompanyType: organization.CompanyTypeHeadquarters, OwnShareBps: bpsScale, ParentShareBps: 0},
	)
	return p
}

// RuleFor returns the rule for a company type, falling back to full own share
func (p *SplitPolicy) RuleFor(companyType organization.CompanyType) SplitRule {
	if r, ok := p.rules[companyType]; ok {
		return r
	}
	return SplitRule{CompanyType: companyType, OwnShareBps: bpsScale, ParentShareBps: 0}
}

// Split divides total between the originating company and its parent.
// The own share is rounded to whole KRW and the parent receives the exact
// remainder, so ownShare + parentShare always equals total.
func (p *SplitPolicy) Split(companyType organization.CompanyType, total valueobject.Money) (ownShare, parentShare valueobject.Money) {
	rule := p.RuleFor(companyType)
	if rule.ParentShareBps == 0 {
		return total, valueobject.Zero(total.Currency())
	}

	ratio := decimal.NewFromInt(int64(rule.OwnShareBps)).Div(decimal.NewFromInt(bpsScale))
	ownShare = total.Multiply(ratio).Round(0)
	parentShare = total.MustSubtract(ownShare)
	return ownShare, parentShare
}
