package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories shared by the settlement application tests
// =============================================================================

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByNumber(ctx context.Context, settlementNumber string) (*settlement.Settlement, error) {
	args := m.Called(ctx, settlementNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindAll(ctx context.Context, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.Settlement), args.Get(1).(int64), args.Error(2)
}

func (m *MockSettlementRepository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, orderID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) CountQualifying(ctx context.Context, companyID, policyID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, companyID, policyID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockSettlementRepository) FindCreatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]settlement.Settlement, error) {
	args := m.Called(ctx, from, to, offset, limit)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementRepository) GenerateSettlementNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettlementRepository) Save(ctx context.Context, stl *settlement.Settlement) error {
	args := m.Called(ctx, stl)
	return args.Error(0)
}

func (m *MockSettlementRepository) SaveAll(ctx context.Context, stls []*settlement.Settlement) error {
	args := m.Called(ctx, stls)
	return args.Error(0)
}

type MockGradeTrackingRepository struct {
	mock.Mock
}

func (m *MockGradeTrackingRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) FindByKey(ctx context.Context, companyID, policyID uuid.UUID, periodType valueobject.PeriodType, periodStart time.Time) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, periodType, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) FindActiveAt(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, at)
	return args.Get(0).([]*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) FindActiveAtForUpdate(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, at)
	return args.Get(0).([]*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockGradeTrackingRepository) Save(ctx context.Context, tracking *settlement.CommissionGradeTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

func (m *MockGradeTrackingRepository) SaveHistory(ctx context.Context, history *settlement.GradeAchievementHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockGradeTrackingRepository) FindHistory(ctx context.Context, trackingID uuid.UUID) ([]settlement.GradeAchievementHistory, error) {
	args := m.Called(ctx, trackingID)
	return args.Get(0).([]settlement.GradeAchievementHistory), args.Error(1)
}

type MockGradeBonusRepository struct {
	mock.Mock
}

func (m *MockGradeBonusRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.GradeBonusSettlement), args.Error(1)
}

func (m *MockGradeBonusRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.GradeBonusSettlement), args.Error(1)
}

func (m *MockGradeBonusRepository) FindPendingByTracking(ctx context.Context, trackingID uuid.UUID) (*settlement.GradeBonusSettlement, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.GradeBonusSettlement), args.Error(1)
}

func (m *MockGradeBonusRepository) FindByTracking(ctx context.Context, trackingID uuid.UUID) ([]settlement.GradeBonusSettlement, error) {
	args := m.Called(ctx, trackingID)
	return args.Get(0).([]settlement.GradeBonusSettlement), args.Error(1)
}

func (m *MockGradeBonusRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]settlement.GradeBonusSettlement, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]settlement.GradeBonusSettlement), args.Error(1)
}

func (m *MockGradeBonusRepository) Save(ctx context.Context, bonus *settlement.GradeBonusSettlement) error {
	args := m.Called(ctx, bonus)
	return args.Error(0)
}

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) FindByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) FindByCode(ctx context.Context, code string) (*policy.Policy, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) FindAll(ctx context.Context, filter policy.PolicyFilter) ([]policy.Policy, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]policy.Policy), args.Error(1)
}

func (m *MockPolicyRepository) Save(ctx context.Context, pol *policy.Policy) error {
	args := m.Called(ctx, pol)
	return args.Error(0)
}

type MockSplitRuleRepository struct {
	mock.Mock
}

func (m *MockSplitRuleRepository) LoadSplitPolicy(ctx context.Context) (*policy.SplitPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.SplitPolicy), args.Error(1)
}

func (m *MockSplitRuleRepository) SaveRule(ctx context.Context, rule policy.SplitRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

type MockHierarchyLookup struct {
	mock.Mock
}

func (m *MockHierarchyLookup) Lookup(ctx context.Context, companyID uuid.UUID) (*organization.CompanyNode, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.CompanyNode), args.Error(1)
}

func (m *MockHierarchyLookup) Invalidate(ctx context.Context, companyID uuid.UUID) {
	m.Called(ctx, companyID)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
