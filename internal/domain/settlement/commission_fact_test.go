package settlement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDims() PolicyDimensions {
	return PolicyDimensions{
		Carrier:        policy.CarrierSKT,
		PlanRange:      policy.PlanRange69To95K,
		ContractPeriod: policy.ContractPeriod24,
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(SettlementStatusPending))
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(SettlementStatusApproved))
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(SettlementStatusCancelled))
	assert.Equal(t, PaymentStatusUnpaid, DerivePaymentStatus(SettlementStatusUnpaid))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(SettlementStatusPaid))
}

func TestNewCommissionFact(t *testing.T) {
	t.Run("combines settlement and tracking state", func(t *testing.T) {
		stl := newTestSettlement(t)
		tracking, err := NewMonthlyTracking(stl.CompanyID, stl.PolicyID, 2025, time.August, 20)
		require.NoError(t, err)
		_, err = tracking.ApplyOrderCount(10, testTiers())
		require.NoError(t, err)

		fact := NewCommissionFact(stl, testDims(), tracking, "etl_20250801120000")

		assert.Equal(t, stl.OrderID, fact.OrderID)
		assert.Equal(t, stl.CompanyID, fact.CompanyID)
		assert.Equal(t, policy.CarrierSKT, fact.Carrier)
		assert.True(t, fact.BaseCommission.Equal(decimal.NewFromInt(70000)))
		assert.True(t, fact.GradeBonus.Equal(decimal.NewFromInt(250)))
		assert.True(t, fact.TotalCommission.Equal(decimal.NewFromInt(70250)))
		assert.Equal(t, 10, fact.OrderCountInPeriod)
		assert.Equal(t, 2, fact.AchievedGradeLevel)
		assert.Equal(t, SettlementStatusPending, fact.SettlementStatus)
		assert.Equal(t, PaymentStatusPending, fact.PaymentStatus)
		assert.Equal(t, "etl_20250801120000", fact.BatchID)

		expectedDay := stl.CreatedAt.UTC().Truncate(24 * time.Hour)
		assert.Equal(t, expectedDay, fact.DateKey)
	})

	t.Run("missing tracking leaves grade columns zero", func(t *testing.T) {
		stl := newTestSettlement(t)
		fact := NewCommissionFact(stl, testDims(), nil, "etl_x")

		assert.True(t, fact.GradeBonus.IsZero())
		assert.Equal(t, 0, fact.OrderCountInPeriod)
		assert.Equal(t, 0, fact.AchievedGradeLevel)
		assert.True(t, fact.TotalCommission.Equal(fact.BaseCommission))
	})

	t.Run("derivation is idempotent", func(t *testing.T) {
		stl := newTestSettlement(t)
		tracking, err := NewMonthlyTracking(stl.CompanyID, stl.PolicyID, 2025, time.August, 20)
		require.NoError(t, err)
		_, err = tracking.ApplyOrderCount(7, testTiers())
		require.NoError(t, err)

		a := NewCommissionFact(stl, testDims(), tracking, "etl_run")
		b := NewCommissionFact(stl, testDims(), tracking, "etl_run")

		assert.Equal(t, a.DateKey, b.DateKey)
		assert.True(t, a.BaseCommission.Equal(b.BaseCommission))
		assert.True(t, a.GradeBonus.Equal(b.GradeBonus))
		assert.True(t, a.TotalCommission.Equal(b.TotalCommission))
		assert.Equal(t, a.SettlementStatus, b.SettlementStatus)
		assert.Equal(t, a.PaymentStatus, b.PaymentStatus)
		assert.Equal(t, a.OrderCountInPeriod, b.OrderCountInPeriod)
		assert.Equal(t, a.AchievedGradeLevel, b.AchievedGradeLevel)
	})
}

func TestCommissionFactRefresh(t *testing.T) {
	stl := newTestSettlement(t)
	tracking, err := NewMonthlyTracking(stl.CompanyID, stl.PolicyID, 2025, time.August, 20)
	require.NoError(t, err)
	_, err = tracking.ApplyOrderCount(5, testTiers())
	require.NoError(t, err)

	fact := NewCommissionFact(stl, testDims(), tracking, "etl_1")
	require.True(t, fact.GradeBonus.Equal(decimal.NewFromInt(100)))

	_, err = tracking.ApplyOrderCount(10, testTiers())
	require.NoError(t, err)
	require.NoError(t, stl.Approve(uuid.New()))

	fact.Refresh(stl, testDims(), tracking, "etl_2")

	assert.True(t, fact.GradeBonus.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 2, fact.AchievedGradeLevel)
	assert.Equal(t, SettlementStatusApproved, fact.SettlementStatus)
	assert.Equal(t, "etl_2", fact.BatchID)
}

func TestCommissionFactSyncStatus(t *testing.T) {
	stl := newTestSettlement(t)
	fact := NewCommissionFact(stl, testDims(), nil, "etl_1")

	t.Run("no drift means no change", func(t *testing.T) {
		assert.False(t, fact.SyncStatus(stl))
	})

	t.Run("drift is corrected", func(t *testing.T) {
		require.NoError(t, stl.Approve(uuid.New()))
		require.NoError(t, stl.MarkAsPaid(PaymentMethodBankTransfer, "TX-1"))

		assert.True(t, fact.SyncStatus(stl))
		assert.Equal(t, SettlementStatusPaid, fact.SettlementStatus)
		assert.Equal(t, PaymentStatusPaid, fact.PaymentStatus)

		assert.False(t, fact.SyncStatus(stl))
	})
}
