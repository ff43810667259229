package etl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
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

type MockFactRepository struct {
	mock.Mock
}

func (m *MockFactRepository) FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*settlement.CommissionFact, error) {
	args := m.Called(ctx, orderID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionFact), args.Error(1)
}

func (m *MockFactRepository) FindByBatch(ctx context.Context, batchID string) ([]settlement.CommissionFact, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).([]settlement.CommissionFact), args.Error(1)
}

func (m *MockFactRepository) FindAllPaged(ctx context.Context, offset, limit int) ([]settlement.CommissionFact, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]settlement.CommissionFact), args.Error(1)
}

func (m *MockFactRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFactRepository) SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]settlement.StatusTotal, error) {
	args := m.Called(ctx, companyID, from, to)
	return args.Get(0).([]settlement.StatusTotal), args.Error(1)
}

func (m *MockFactRepository) Save(ctx context.Context, fact *settlement.CommissionFact) error {
	args := m.Called(ctx, fact)
	return args.Error(0)
}

func (m *MockFactRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindByKey(ctx context.Context, companyID, policyID uuid.UUID, periodType valueobject.PeriodType, periodStart time.Time) (*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, periodType, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindActiveAt(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, at)
	return args.Get(0).([]*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindActiveAtForUpdate(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID, policyID, at)
	return args.Get(0).([]*settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) ([]settlement.CommissionGradeTracking, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]settlement.CommissionGradeTracking), args.Error(1)
}

func (m *MockTrackingRepository) Save(ctx context.Context, tracking *settlement.CommissionGradeTracking) error {
	args := m.Called(ctx, tracking)
	return args.Error(0)
}

func (m *MockTrackingRepository) SaveHistory(ctx context.Context, history *settlement.GradeAchievementHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockTrackingRepository) FindHistory(ctx context.Context, trackingID uuid.UUID) ([]settlement.GradeAchievementHistory, error) {
	args := m.Called(ctx, trackingID)
	return args.Get(0).([]settlement.GradeAchievementHistory), args.Error(1)
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

type MockOrderLookup struct {
	mock.Mock
}

func (m *MockOrderLookup) FindByID(ctx context.Context, id uuid.UUID) (*order.Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Snapshot), args.Error(1)
}

type noopTx struct{}

func (noopTx) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =============================================================================
// Fixtures
// =============================================================================

type etlFixture struct {
	service        *CommissionFactETLService
	settlementRepo *MockSettlementRepository
	factRepo       *MockFactRepository
	trackingRepo   *MockTrackingRepository
	policyRepo     *MockPolicyRepository
	orderLookup    *MockOrderLookup
}

func newETLFixture() *etlFixture {
	f := &etlFixture{
		settlementRepo: new(MockSettlementRepository),
		factRepo:       new(MockFactRepository),
		trackingRepo:   new(MockTrackingRepository),
		policyRepo:     new(MockPolicyRepository),
		orderLookup:    new(MockOrderLookup),
	}
	f.service = NewCommissionFactETLService(
		f.settlementRepo, f.factRepo, f.trackingRepo, f.policyRepo, f.orderLookup,
		noopTx{}, zap.NewNop())
	return f
}

func newLedgerRow(t *testing.T) *settlement.Settlement {
	t.Helper()
	stl, err := settlement.NewSettlement("STL-1", uuid.New(), "ORD-1",
		uuid.New(), "Gangnam Mobile", uuid.New(), valueobject.NewMoneyKRWFromInt(70000))
	require.NoError(t, err)
	stl.ClearDomainEvents()
	return stl
}

func (f *etlFixture) expectDimensions(stl *settlement.Settlement) {
	snapshot := &order.Snapshot{
		ID:             stl.OrderID,
		OrderNumber:    stl.OrderNumber,
		CompanyID:      stl.CompanyID,
		PolicyID:       stl.PolicyID,
		PlanRange:      policy.PlanRange69To95K,
		ContractPeriod: policy.ContractPeriod24,
		RebateAmount:   stl.RebateAmount,
		Status:         order.StatusActivated,
	}
	pol, _ := policy.NewPolicy("POL-SKT-01", "SKT standard", policy.CarrierSKT, policy.GradeTiers{
		{Threshold: 5, Level: 1, BonusPerOrder: decimal.NewFromInt(100)},
	}, time.Now().AddDate(0, -6, 0), nil)
	pol.ID = stl.PolicyID

	f.orderLookup.On("FindByID", mock.Anything, stl.OrderID).Return(snapshot, nil)
	f.policyRepo.On("FindByID", mock.Anything, stl.PolicyID).Return(pol, nil)
	f.trackingRepo.On("FindActiveAt", mock.Anything, stl.CompanyID, stl.PolicyID, stl.CreatedAt).
		Return([]*settlement.CommissionGradeTracking{}, nil)
}

// =============================================================================
// Tests
// =============================================================================

func TestSyncRangeInsertsNewFacts(t *testing.T) {
	f := newETLFixture()
	stl := newLedgerRow(t)
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(1), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).
		Return([]settlement.Settlement{*stl}, nil)
	f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(nil, nil)
	f.expectDimensions(stl)

	var saved *settlement.CommissionFact
	f.factRepo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*settlement.CommissionFact) }).
		Return(nil)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Failed)
	assert.Contains(t, summary.BatchID, "etl_")

	require.NotNil(t, saved)
	assert.Equal(t, stl.OrderID, saved.OrderID)
	assert.True(t, saved.BaseCommission.Equal(decimal.NewFromInt(70000)))
	assert.Equal(t, settlement.PaymentStatusPending, saved.PaymentStatus)
}

func TestSyncRangeStampsAllFactsWithRunBatchID(t *testing.T) {
	f := newETLFixture()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	rows := make([]settlement.Settlement, 0, 3)
	for i := 0; i < 3; i++ {
		stl := newLedgerRow(t)
		rows = append(rows, *stl)
		f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(nil, nil)
		f.expectDimensions(stl)
	}

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(len(rows)), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).
		Return(rows, nil)

	var saved []*settlement.CommissionFact
	f.factRepo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*settlement.CommissionFact)) }).
		Return(nil)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{})
	require.NoError(t, err)

	require.Len(t, saved, 3)
	for _, fact := range saved {
		assert.Equal(t, summary.BatchID, fact.BatchID)
	}
}

func TestSyncRangeStatusFastPath(t *testing.T) {
	f := newETLFixture()
	stl := newLedgerRow(t)
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	fact := settlement.NewCommissionFact(stl, settlement.PolicyDimensions{
		Carrier: policy.CarrierSKT, PlanRange: policy.PlanRange69To95K, ContractPeriod: policy.ContractPeriod24,
	}, nil, "etl_old")

	require.NoError(t, stl.Approve(uuid.New()))
	require.NoError(t, stl.MarkAsPaid(settlement.PaymentMethodBankTransfer, "TX-1"))
	stl.ClearDomainEvents()

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(1), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).
		Return([]settlement.Settlement{*stl}, nil)
	f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(fact, nil)
	f.factRepo.On("Save", mock.Anything, fact).Return(nil)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, settlement.SettlementStatusPaid, fact.SettlementStatus)
	assert.Equal(t, settlement.PaymentStatusPaid, fact.PaymentStatus)
	// the fast path never re-derives dimensions
	f.orderLookup.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSyncRangeForceRecompute(t *testing.T) {
	f := newETLFixture()
	stl := newLedgerRow(t)
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	stale := settlement.NewCommissionFact(stl, settlement.PolicyDimensions{
		Carrier: policy.CarrierKT, PlanRange: policy.PlanRangeUnder33K, ContractPeriod: policy.ContractPeriod12,
	}, nil, "etl_old")

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(1), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).
		Return([]settlement.Settlement{*stl}, nil)
	f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(stale, nil)
	f.expectDimensions(stl)
	f.factRepo.On("Save", mock.Anything, stale).Return(nil)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{Force: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, policy.CarrierSKT, stale.Carrier)
	assert.Equal(t, policy.PlanRange69To95K, stale.PlanRange)
	assert.Equal(t, summary.BatchID, stale.BatchID)
}

func TestSyncRangeDryRun(t *testing.T) {
	f := newETLFixture()
	stl := newLedgerRow(t)
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(1), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).
		Return([]settlement.Settlement{*stl}, nil)
	f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(nil, nil)
	f.expectDimensions(stl)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Inserted)
	f.factRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.factRepo.AssertNotCalled(t, "DeleteAll", mock.Anything)
}

func TestRebuildTruncatesFirst(t *testing.T) {
	f := newETLFixture()

	f.factRepo.On("DeleteAll", mock.Anything).Return(nil)
	f.settlementRepo.On("CountCreatedBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	summary, err := f.service.Rebuild(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "rebuild", summary.Mode)
	assert.Equal(t, 0, summary.Processed)
	f.factRepo.AssertCalled(t, "DeleteAll", mock.Anything)
}

func TestErrorRateCircuitBreaker(t *testing.T) {
	f := newETLFixture()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	// 12 settlements, every row fails its order lookup
	rows := make([]settlement.Settlement, 0, 12)
	for i := 0; i < 12; i++ {
		stl := newLedgerRow(t)
		rows = append(rows, *stl)
		f.factRepo.On("FindByOrderAndCompany", mock.Anything, stl.OrderID, stl.CompanyID).Return(nil, nil)
		f.orderLookup.On("FindByID", mock.Anything, stl.OrderID).Return(nil, nil)
	}

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(len(rows)), nil)
	f.settlementRepo.On("FindCreatedBetween", mock.Anything, from, to, 0, DefaultChunkSize).Return(rows, nil)

	summary, err := f.service.SyncRange(context.Background(), from, to, RunOptions{})
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeThresholdExceeded))
	assert.Equal(t, 12, summary.Failed)
	// aborted runs still close out their summary
	assert.False(t, summary.FinishedAt.IsZero())
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))
}

func TestRunHonorsContextCancellation(t *testing.T) {
	f := newETLFixture()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	f.settlementRepo.On("CountCreatedBetween", mock.Anything, from, to).Return(int64(5000), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := f.service.SyncRange(ctx, from, to, RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, summary.FinishedAt.IsZero())
	f.settlementRepo.AssertNotCalled(t, "FindCreatedBetween",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncSettlementStatus(t *testing.T) {
	f := newETLFixture()
	stl := newLedgerRow(t)

	fact := settlement.NewCommissionFact(stl, settlement.PolicyDimensions{
		Carrier: policy.CarrierSKT, PlanRange: policy.PlanRange69To95K, ContractPeriod: policy.ContractPeriod24,
	}, nil, "etl_old")

	require.NoError(t, stl.Approve(uuid.New()))
	stl.ClearDomainEvents()

	f.factRepo.On("Count", mock.Anything).Return(int64(1), nil)
	f.factRepo.On("FindAllPaged", mock.Anything, 0, DefaultChunkSize).
		Return([]settlement.CommissionFact{*fact}, nil)
	f.settlementRepo.On("FindByOrderAndCompany", mock.Anything, fact.OrderID, fact.CompanyID).Return(stl, nil)
	f.factRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.service.SyncSettlementStatus(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
}

func TestSyncRecentValidatesDays(t *testing.T) {
	f := newETLFixture()
	_, err := f.service.SyncRecent(context.Background(), 0, RunOptions{})
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
}

func TestNewBatchID(t *testing.T) {
	ts := time.Date(2025, 8, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, "etl_20250801123045", NewBatchID(ts))
}
