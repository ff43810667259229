package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

type trackingFixture struct {
	service        *GradeTrackingService
	trackingRepo   *MockGradeTrackingRepository
	settlementRepo *MockSettlementRepository
	policyRepo     *MockPolicyRepository
	bonusRepo      *MockGradeBonusRepository
}

func newTrackingFixture() *trackingFixture {
	f := &trackingFixture{
		trackingRepo:   new(MockGradeTrackingRepository),
		settlementRepo: new(MockSettlementRepository),
		policyRepo:     new(MockPolicyRepository),
		bonusRepo:      new(MockGradeBonusRepository),
	}
	logger := zap.NewNop()
	tx := NoopTransactionManager{}
	bonusService := NewGradeBonusService(f.bonusRepo, f.trackingRepo, tx, nil, logger)
	f.service = NewGradeTrackingService(f.trackingRepo, f.settlementRepo, f.policyRepo, bonusService, tx, nil, logger)
	return f
}

func tieredPolicy(id uuid.UUID) *policy.Policy {
	pol, _ := policy.NewPolicy("POL-SKT-01", "SKT standard", policy.CarrierSKT, policy.GradeTiers{
		{Threshold: 5, Level: 1, BonusPerOrder: decimal.NewFromInt(100)},
		{Threshold: 10, Level: 2, BonusPerOrder: decimal.NewFromInt(250)},
	}, time.Now().AddDate(0, -6, 0), nil)
	pol.ID = id
	return pol
}

func TestSetupTarget(t *testing.T) {
	req := SetupTrackingRequest{
		CompanyID:    uuid.New(),
		PolicyID:     uuid.New(),
		PeriodType:   valueobject.PeriodTypeMonthly,
		Year:         2025,
		Month:        8,
		TargetOrders: 20,
	}

	t.Run("creates monthly tracking", func(t *testing.T) {
		f := newTrackingFixture()
		f.policyRepo.On("FindByID", mock.Anything, req.PolicyID).Return(tieredPolicy(req.PolicyID), nil)
		f.trackingRepo.On("FindByKey", mock.Anything, req.CompanyID, req.PolicyID,
			valueobject.PeriodTypeMonthly, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)).
			Return(nil, nil)
		f.trackingRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.SetupTarget(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 20, resp.TargetOrders)
		assert.Equal(t, string(valueobject.PeriodTypeMonthly), resp.PeriodType)
		assert.Equal(t, 0, resp.CurrentOrders)
	})

	t.Run("duplicate period collides", func(t *testing.T) {
		f := newTrackingFixture()
		existing, err := settlement.NewMonthlyTracking(req.CompanyID, req.PolicyID, 2025, time.August, 10)
		require.NoError(t, err)

		f.policyRepo.On("FindByID", mock.Anything, req.PolicyID).Return(tieredPolicy(req.PolicyID), nil)
		f.trackingRepo.On("FindByKey", mock.Anything, req.CompanyID, req.PolicyID,
			valueobject.PeriodTypeMonthly, mock.Anything).Return(existing, nil)

		_, err = f.service.SetupTarget(context.Background(), req)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeDuplicateTracking))
		f.trackingRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown policy rejected", func(t *testing.T) {
		f := newTrackingFixture()
		f.policyRepo.On("FindByID", mock.Anything, req.PolicyID).Return(nil, nil)

		_, err := f.service.SetupTarget(context.Background(), req)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("quarterly setup", func(t *testing.T) {
		f := newTrackingFixture()
		quarterly := req
		quarterly.PeriodType = valueobject.PeriodTypeQuarterly
		quarterly.Quarter = 3

		f.policyRepo.On("FindByID", mock.Anything, req.PolicyID).Return(tieredPolicy(req.PolicyID), nil)
		f.trackingRepo.On("FindByKey", mock.Anything, req.CompanyID, req.PolicyID,
			valueobject.PeriodTypeQuarterly, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)).
			Return(nil, nil)
		f.trackingRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.SetupTarget(context.Background(), quarterly)
		require.NoError(t, err)
		assert.Equal(t, string(valueobject.PeriodTypeQuarterly), resp.PeriodType)
	})
}

func TestRecountTracking(t *testing.T) {
	t.Run("level up appends history and opens bonus", func(t *testing.T) {
		f := newTrackingFixture()
		tracking, err := settlement.NewMonthlyTracking(uuid.New(), uuid.New(), 2025, time.August, 20)
		require.NoError(t, err)

		f.trackingRepo.On("FindByIDForUpdate", mock.Anything, tracking.ID).Return(tracking, nil)
		f.policyRepo.On("FindByID", mock.Anything, tracking.PolicyID).Return(tieredPolicy(tracking.PolicyID), nil)
		f.settlementRepo.On("CountQualifying", mock.Anything, tracking.CompanyID, tracking.PolicyID,
			tracking.PeriodStart, tracking.PeriodEnd).Return(10, nil)
		f.trackingRepo.On("Save", mock.Anything, tracking).Return(nil)

		var history *settlement.GradeAchievementHistory
		f.trackingRepo.On("SaveHistory", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				history = args.Get(1).(*settlement.GradeAchievementHistory)
			}).
			Return(nil)

		f.bonusRepo.On("FindByTracking", mock.Anything, tracking.ID).Return([]settlement.GradeBonusSettlement{}, nil)
		var bonus *settlement.GradeBonusSettlement
		f.bonusRepo.On("Save", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				bonus = args.Get(1).(*settlement.GradeBonusSettlement)
			}).
			Return(nil)

		resp, err := f.service.RecountTracking(context.Background(), tracking.ID)
		require.NoError(t, err)

		assert.Equal(t, 10, resp.CurrentOrders)
		assert.Equal(t, 2, resp.AchievedGradeLevel)
		assert.True(t, resp.TotalBonus.Equal(decimal.NewFromInt(2500)))

		require.NotNil(t, history)
		assert.Equal(t, 0, history.FromLevel)
		assert.Equal(t, 2, history.ToLevel)

		require.NotNil(t, bonus)
		assert.Equal(t, 2, bonus.GradeLevel)
		assert.True(t, bonus.BonusAmount.Equal(decimal.NewFromInt(2500)))
		assert.Equal(t, settlement.SettlementStatusPending, bonus.Status)
	})

	t.Run("no level change writes no history", func(t *testing.T) {
		f := newTrackingFixture()
		tracking, err := settlement.NewMonthlyTracking(uuid.New(), uuid.New(), 2025, time.August, 20)
		require.NoError(t, err)

		f.trackingRepo.On("FindByIDForUpdate", mock.Anything, tracking.ID).Return(tracking, nil)
		f.policyRepo.On("FindByID", mock.Anything, tracking.PolicyID).Return(tieredPolicy(tracking.PolicyID), nil)
		f.settlementRepo.On("CountQualifying", mock.Anything, tracking.CompanyID, tracking.PolicyID,
			tracking.PeriodStart, tracking.PeriodEnd).Return(3, nil)
		f.trackingRepo.On("Save", mock.Anything, tracking).Return(nil)
		f.bonusRepo.On("FindByTracking", mock.Anything, tracking.ID).Return([]settlement.GradeBonusSettlement{}, nil)

		resp, err := f.service.RecountTracking(context.Background(), tracking.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.CurrentOrders)
		assert.Equal(t, 0, resp.AchievedGradeLevel)
		f.trackingRepo.AssertNotCalled(t, "SaveHistory", mock.Anything, mock.Anything)
		f.bonusRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing tracking", func(t *testing.T) {
		f := newTrackingFixture()
		id := uuid.New()
		f.trackingRepo.On("FindByIDForUpdate", mock.Anything, id).Return(nil, nil)

		_, err := f.service.RecountTracking(context.Background(), id)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}

func TestDeactivateTracking(t *testing.T) {
	f := newTrackingFixture()
	tracking, err := settlement.NewMonthlyTracking(uuid.New(), uuid.New(), 2025, time.August, 20)
	require.NoError(t, err)

	f.trackingRepo.On("FindByID", mock.Anything, tracking.ID).Return(tracking, nil)
	f.trackingRepo.On("Save", mock.Anything, tracking).Return(nil)

	resp, err := f.service.Deactivate(context.Background(), tracking.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}
