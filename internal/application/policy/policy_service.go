package policy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePolicyRequest carries the input for publishing a policy
type CreatePolicyRequest struct {
	Code        string             `json:"code" binding:"required,max=30"`
	Name        string             `json:"name" binding:"required,max=200"`
	Carrier     string             `json:"carrier" binding:"required"`
	Description string             `json:"description" binding:"max=1000"`
	GradeTiers  []GradeTierRequest `json:"grade_tiers"`
	ValidFrom   time.Time          `json:"valid_from" binding:"required"`
	ValidTo     *time.Time         `json:"valid_to"`
}

// GradeTierRequest is one grade schedule step
type GradeTierRequest struct {
	Threshold     int             `json:"threshold" binding:"required,min=1"`
	Level         int             `json:"level" binding:"required,min=1"`
	BonusPerOrder decimal.Decimal `json:"bonus_per_order" binding:"required"`
}

// SetRebateRequest upserts one rebate matrix cell
type SetRebateRequest struct {
	Carrier        string          `json:"carrier" binding:"required"`
	PlanRange      string          `json:"plan_range" binding:"required"`
	ContractPeriod int             `json:"contract_period" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
}

// SetSplitRuleRequest upserts the split rule for one company type
type SetSplitRuleRequest struct {
	CompanyType    string `json:"company_type" binding:"required"`
	OwnShareBps    int    `json:"own_share_bps" binding:"min=0,max=10000"`
	ParentShareBps int    `json:"parent_share_bps" binding:"min=0,max=10000"`
}

// PolicyResponse is the API projection of a policy
type PolicyResponse struct {
	ID          uuid.UUID           `json:"id"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Carrier     string              `json:"carrier"`
	Description string              `json:"description,omitempty"`
	GradeTiers  []GradeTierResponse `json:"grade_tiers"`
	ValidFrom   time.Time           `json:"valid_from"`
	ValidTo     *time.Time          `json:"valid_to,omitempty"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Version     int                 `json:"version"`
}

// GradeTierResponse is one grade schedule step
type GradeTierResponse struct {
	Threshold     int             `json:"threshold"`
	Level         int             `json:"level"`
	BonusPerOrder decimal.Decimal `json:"bonus_per_order"`
}

// RebateEntryResponse is one rebate matrix cell
type RebateEntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	PolicyID       uuid.UUID       `json:"policy_id"`
	Carrier        string          `json:"carrier"`
	PlanRange      string          `json:"plan_range"`
	ContractPeriod int             `json:"contract_period"`
	Amount         decimal.Decimal `json:"amount"`
}

func toPolicyResponse(pol *policy.Policy) *PolicyResponse {
	tiers := make([]GradeTierResponse, len(pol.GradeTiers))
	for i, tier := range pol.GradeTiers {
		tiers[i] = GradeTierResponse{
			Threshold:     tier.Threshold,
			Level:         tier.Level,
			BonusPerOrder: tier.BonusPerOrder,
		}
	}
	return &PolicyResponse{
		ID:          pol.ID,
		Code:        pol.Code,
		Name:        pol.Name,
		Carrier:     string(pol.Carrier),
		Description: pol.Description,
		GradeTiers:  tiers,
		ValidFrom:   pol.ValidFrom,
		ValidTo:     pol.ValidTo,
		IsActive:    pol.IsActive,
		CreatedAt:   pol.CreatedAt,
		UpdatedAt:   pol.UpdatedAt,
		Version:     pol.Version,
	}
}

func toRebateEntryResponse(entry *policy.RebateEntry) *RebateEntryResponse {
	return &RebateEntryResponse{
		ID:             entry.ID,
		PolicyID:       entry.PolicyID,
		Carrier:        string(entry.Carrier),
		PlanRange:      string(entry.PlanRange),
		ContractPeriod: int(entry.ContractPeriod),
		Amount:         entry.Amount,
	}
}

// PolicyService manages commission policies, the rebate matrix and the
// split rule configuration
type PolicyService struct {
	policyRepo policy.PolicyRepository
	rebateRepo policy.RebateMatrixRepository
	splitRepo  policy.SplitRuleRepository
	logger     *zap.Logger
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(
	policyRepo policy.PolicyRepository,
	rebateRepo policy.RebateMatrixRepository,
	splitRepo policy.SplitRuleRepository,
	logger *zap.Logger,
) *PolicyService {
	return &PolicyService{
		policyRepo: policyRepo,
		rebateRepo: rebateRepo,
		splitRepo:  splitRepo,
		logger:     logger,
	}
}

// Create publishes a commission policy
func (s *PolicyService) Create(ctx context.Context, req CreatePolicyRequest) (*PolicyResponse, error) {
	if existing, err := s.policyRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Policy code already in use")
	} else if err != nil && !shared.HasCode(err, shared.CodeNotFound) {
		return nil, err
	}

	tiers := make(policy.GradeTiers, len(req.GradeTiers))
	for i, tier := range req.GradeTiers {
		tiers[i] = policy.GradeTier{
			Threshold:     tier.Threshold,
			Level:         tier.Level,
			BonusPerOrder: tier.BonusPerOrder,
		}
	}

	pol, err := policy.NewPolicy(req.Code, req.Name, policy.Carrier(req.Carrier), tiers, req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}
	pol.Description = req.Description

	if err := s.policyRepo.Save(ctx, pol); err != nil {
		return nil, err
	}

	s.logger.Info("policy created",
		zap.String("policy_id", pol.ID.String()),
		zap.String("code", pol.Code),
		zap.String("carrier", string(pol.Carrier)))

	return toPolicyResponse(pol), nil
}

// GetByID returns one policy
func (s *PolicyService) GetByID(ctx context.Context, id uuid.UUID) (*PolicyResponse, error) {
	pol, err := s.policyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPolicyResponse(pol), nil
}

// List returns policies matching the filter
func (s *PolicyService) List(ctx context.Context, filter policy.PolicyFilter) ([]PolicyResponse, error) {
	policies, err := s.policyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PolicyResponse, len(policies))
	for i := range policies {
		responses[i] = *toPolicyResponse(&policies[i])
	}
	return responses, nil
}

// UpdateGradeTiers replaces a policy's grade schedule
func (s *PolicyService) UpdateGradeTiers(ctx context.Context, id uuid.UUID, reqTiers []GradeTierRequest) (*PolicyResponse, error) {
	pol, err := s.policyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tiers := make(policy.GradeTiers, len(reqTiers))
	for i, tier := range reqTiers {
		tiers[i] = policy.GradeTier{
			Threshold:     tier.Threshold,
			Level:         tier.Level,
			BonusPerOrder: tier.BonusPerOrder,
		}
	}
	if err := pol.UpdateGradeTiers(tiers); err != nil {
		return nil, err
	}
	if err := s.policyRepo.Save(ctx, pol); err != nil {
		return nil, err
	}
	return toPolicyResponse(pol), nil
}

// Deactivate retires a policy. Open trackings against it keep running
// until their period ends.
func (s *PolicyService) Deactivate(ctx context.Context, id uuid.UUID) (*PolicyResponse, error) {
	pol, err := s.policyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pol.Deactivate()
	if err := s.policyRepo.Save(ctx, pol); err != nil {
		return nil, err
	}
	return toPolicyResponse(pol), nil
}

// ListRebates returns the rebate matrix of a policy
func (s *PolicyService) ListRebates(ctx context.Context, policyID uuid.UUID) ([]RebateEntryResponse, error) {
	if _, err := s.policyRepo.FindByID(ctx, policyID); err != nil {
		return nil, err
	}
	entries, err := s.rebateRepo.FindByPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	responses := make([]RebateEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *toRebateEntryResponse(&entries[i])
	}
	return responses, nil
}

// SetRebate upserts one rebate matrix cell for a policy
func (s *PolicyService) SetRebate(ctx context.Context, policyID uuid.UUID, req SetRebateRequest) (*RebateEntryResponse, error) {
	if _, err := s.policyRepo.FindByID(ctx, policyID); err != nil {
		return nil, err
	}

	entry, err := policy.NewRebateEntry(
		policyID,
		policy.Carrier(req.Carrier),
		policy.PlanRange(req.PlanRange),
		policy.ContractPeriod(req.ContractPeriod),
		valueobject.NewMoneyKRW(req.Amount),
	)
	if err != nil {
		return nil, err
	}

	if err := s.rebateRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("rebate entry saved",
		zap.String("policy_id", policyID.String()),
		zap.String("carrier", req.Carrier),
		zap.String("plan_range", req.PlanRange),
		zap.Int("contract_period", req.ContractPeriod))

	return toRebateEntryResponse(entry), nil
}

// GetSplitRules returns the active split configuration per company type
func (s *PolicyService) GetSplitRules(ctx context.Context) ([]policy.SplitRule, error) {
	splitPolicy, err := s.splitRepo.LoadSplitPolicy(ctx)
	if err != nil {
		return nil, err
	}
	types := []organization.CompanyType{
		organization.CompanyTypeHeadquarters,
		organization.CompanyTypeAgency,
		organization.CompanyTypeRetail,
	}
	rules := make([]policy.SplitRule, 0, len(types))
	for _, t := range types {
		rules = append(rules, splitPolicy.RuleFor(t))
	}
	return rules, nil
}

// SetSplitRule upserts the split rule for one company type
func (s *PolicyService) SetSplitRule(ctx context.Context, req SetSplitRuleRequest) (*policy.SplitRule, error) {
	rule := policy.SplitRule{
		CompanyType:    organization.CompanyType(req.CompanyType),
		OwnShareBps:    req.OwnShareBps,
		ParentShareBps: req.ParentShareBps,
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.splitRepo.SaveRule(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("split rule saved",
		zap.String("company_type", req.CompanyType),
		zap.Int("own_share_bps", req.OwnShareBps),
		zap.Int("parent_share_bps", req.ParentShareBps))

	return &rule, nil
}
