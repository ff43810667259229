package settlement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBonus(t *testing.T) (*GradeBonusSettlement, *CommissionGradeTracking) {
	t.Helper()
	tracking, err := NewMonthlyTracking(uuid.New(), uuid.New(), 2025, time.August, 20)
	require.NoError(t, err)
	_, err = tracking.ApplyOrderCount(10, testTiers())
	require.NoError(t, err)

	bonus, err := NewGradeBonusSettlement(tracking, valueobject.NewMoneyKRW(tracking.TotalBonus), tracking.AchievedGradeLevel)
	require.NoError(t, err)
	return bonus, tracking
}

func TestNewGradeBonusSettlement(t *testing.T) {
	t.Run("opens pending with tracking references", func(t *testing.T) {
		bonus, tracking := newTestBonus(t)
		assert.Equal(t, SettlementStatusPending, bonus.Status)
		assert.Equal(t, tracking.ID, bonus.TrackingID)
		assert.Equal(t, tracking.CompanyID, bonus.CompanyID)
		assert.Equal(t, tracking.PolicyID, bonus.PolicyID)
		assert.Equal(t, 2, bonus.GradeLevel)
		assert.True(t, bonus.BonusAmount.Equal(decimal.NewFromInt(2500)))

		events := bonus.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeGradeBonusCreated, events[0].EventType())
	})

	t.Run("rejects nil tracking and non-positive inputs", func(t *testing.T) {
		_, tracking := newTestBonus(t)

		_, err := NewGradeBonusSettlement(nil, valueobject.NewMoneyKRWFromInt(100), 1)
		require.Error(t, err)

		_, err = NewGradeBonusSettlement(tracking, valueobject.ZeroKRW(), 1)
		require.Error(t, err)

		_, err = NewGradeBonusSettlement(tracking, valueobject.NewMoneyKRWFromInt(100), 0)
		require.Error(t, err)
	})
}

func TestGradeBonusUpdateAmount(t *testing.T) {
	t.Run("pending amount follows the tracking", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		require.NoError(t, bonus.UpdateAmount(valueobject.NewMoneyKRWFromInt(4750), 2))
		assert.True(t, bonus.BonusAmount.Equal(decimal.NewFromInt(4750)))
	})

	t.Run("level cannot decrease", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		err := bonus.UpdateAmount(valueobject.NewMoneyKRWFromInt(500), 1)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, "INVALID_LEVEL"))
	})

	t.Run("frozen once approved", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		require.NoError(t, bonus.Approve(uuid.New()))

		err := bonus.UpdateAmount(valueobject.NewMoneyKRWFromInt(9999), 2)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTransition))
		assert.True(t, bonus.BonusAmount.Equal(decimal.NewFromInt(2500)))
	})
}

func TestGradeBonusStateMachine(t *testing.T) {
	t.Run("approve then pay", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		approver := uuid.New()

		require.NoError(t, bonus.Approve(approver))
		assert.Equal(t, SettlementStatusApproved, bonus.Status)
		require.NotNil(t, bonus.ApproverID)
		assert.Equal(t, approver, *bonus.ApproverID)

		require.NoError(t, bonus.MarkAsPaid(PaymentMethodBankTransfer, "TX-B-1"))
		assert.Equal(t, SettlementStatusPaid, bonus.Status)
		assert.NotNil(t, bonus.PaidAt)
	})

	t.Run("pay requires approved", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		err := bonus.MarkAsPaid(PaymentMethodCash, "")
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTransition))
	})

	t.Run("cancel disallowed once paid", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		require.NoError(t, bonus.Approve(uuid.New()))
		require.NoError(t, bonus.MarkAsPaid(PaymentMethodOffset, ""))

		err := bonus.Cancel("late void")
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTransition))
		assert.Equal(t, SettlementStatusPaid, bonus.Status)
	})

	t.Run("cancel from pending", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		require.NoError(t, bonus.Cancel("tracking deactivated"))
		assert.Equal(t, SettlementStatusCancelled, bonus.Status)
		assert.Equal(t, "tracking deactivated", bonus.CancelReason)
	})

	t.Run("independent of base settlement machine", func(t *testing.T) {
		bonus, _ := newTestBonus(t)
		stl := newTestSettlement(t)

		require.NoError(t, stl.Approve(uuid.New()))
		require.NoError(t, stl.MarkAsPaid(PaymentMethodBankTransfer, "TX-1"))

		// base commission is paid, bonus still awaits its own approval
		assert.Equal(t, SettlementStatusPending, bonus.Status)
		assert.False(t, bonus.IsSettledOrInFlight())
	})
}
