package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CommissionGradeTracking tracks one company's achievement toward a policy's
// grade targets within one period. It is the single source of truth for
// achievement state. Uniqueness holds on (company, policy, period type,
// period start).
//
// Level recomputation is idempotent with the qualifying-order count: a
// recount after a settlement cancellation may lower the achieved level,
// except that the level never drops below RewardedGradeLevel, the highest
// level whose bonus settlement already reached APPROVED or PAID. Freezing at
// the rewarded level keeps disbursed bonuses consistent with the tracking.
type CommissionGradeTracking struct {
	shared.BaseAggregateRoot
	CompanyID          uuid.UUID              `json:"company_id"`
	PolicyID           uuid.UUID              `json:"policy_id"`
	PeriodType         valueobject.PeriodType `json:"period_type"`
	PeriodStart        time.Time              `json:"period_start"`
	PeriodEnd          time.Time              `json:"period_end"`
	TargetOrders       int                    `json:"target_orders"`
	CurrentOrders      int                    `json:"current_orders"`
	AchievedGradeLevel int                    `json:"achieved_grade_level"`
	RewardedGradeLevel int                    `json:"rewarded_grade_level"`
	BonusPerOrder      decimal.Decimal        `json:"bonus_per_order"`
	TotalBonus         decimal.Decimal        `json:"total_bonus"`
	IsActive           bool                   `json:"is_active"`
}

// GradeTransition describes a level change produced by a recount
type GradeTransition struct {
	FromLevel      int
	ToLevel        int
	OrdersAtChange int
	BonusPerOrder  decimal.Decimal
	TotalBonus     decimal.Decimal
}

// IsLevelUp returns true if the transition raised the level
func (t *GradeTransition) IsLevelUp() bool {
	return t.ToLevel > t.FromLevel
}

func newTracking(companyID, policyID uuid.UUID, period valueobject.Period, targetOrders int) (*CommissionGradeTracking, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if targetOrders <= 0 {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target orders must be positive")
	}

	return &CommissionGradeTracking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		PolicyID:          policyID,
		PeriodType:        period.Type(),
		PeriodStart:       period.Start(),
		PeriodEnd:         period.End(),
		TargetOrders:      targetOrders,
		CurrentOrders:     0,
		BonusPerOrder:     decimal.Zero,
		TotalBonus:        decimal.Zero,
		IsActive:          true,
	}, nil
}

// NewMonthlyTracking sets up achievement tracking for a calendar month
func NewMonthlyTracking(companyID, policyID uuid.UUID, year int, month time.Month, targetOrders int) (*CommissionGradeTracking, error) {
	period, err := valueobject.NewMonthlyPeriod(year, month)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	return newTracking(companyID, policyID, period, targetOrders)
}

// NewQuarterlyTracking sets up achievement tracking for a calendar quarter
func NewQuarterlyTracking(companyID, policyID uuid.UUID, year, quarter, targetOrders int) (*CommissionGradeTracking, error) {
	period, err := valueobject.NewQuarterlyPeriod(year, quarter)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	return newTracking(companyID, policyID, period, targetOrders)
}

// NewYearlyTracking sets up achievement tracking for a calendar year
func NewYearlyTracking(companyID, policyID uuid.UUID, year, targetOrders int) (*CommissionGradeTracking, error) {
	period, err := valueobject.NewYearlyPeriod(year)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}
	return newTracking(companyID, policyID, period, targetOrders)
}

// Period returns the tracking's period as a value object
func (t *CommissionGradeTracking) Period() valueobject.Period {
	p, _ := valueobject.NewPeriod(t.PeriodType, t.PeriodStart, t.PeriodEnd)
	return p
}

// Contains reports whether ts falls within the tracking period
func (t *CommissionGradeTracking) Contains(ts time.Time) bool {
	return t.Period().Contains(ts)
}

// HasEnded reports whether the period is over at ts
func (t *CommissionGradeTracking) HasEnded(ts time.Time) bool {
	return t.Period().HasEnded(ts)
}

// IsAchieved reports whether the order target has been reached
func (t *CommissionGradeTracking) IsAchieved() bool {
	return t.CurrentOrders >= t.TargetOrders
}

// AchievementRate returns current/target as a percentage rounded to 2 places
func (t *CommissionGradeTracking) AchievementRate() decimal.Decimal {
	if t.TargetOrders == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(t.CurrentOrders)).
		Div(decimal.NewFromInt(int64(t.TargetOrders))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// ApplyOrderCount sets the qualifying-order count and re-derives the achieved
// level and bonus from the policy's grade schedule. Returns a non-nil
// transition when the level changed. Counting is the caller's job: qualifying
// settlements for (company, policy) within [PeriodStart, PeriodEnd).
func (t *CommissionGradeTracking) ApplyOrderCount(count int, tiers policy.GradeTiers) (*GradeTransition, error) {
	if !t.IsActive {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Tracking is deactivated")
	}
	if count < 0 {
		return nil, shared.NewDomainError("INVALID_COUNT", "Order count cannot be negative")
	}

	level, bonusPerOrder := tiers.Evaluate(count)

	// Never regress below a level whose bonus has been approved or paid.
	if level < t.RewardedGradeLevel {
		level = t.RewardedGradeLevel
		if tier := tiers.TierForLevel(level); tier != nil {
			bonusPerOrder = tier.BonusPerOrder
		}
	}

	previousLevel := t.AchievedGradeLevel
	t.CurrentOrders = count
	t.AchievedGradeLevel = level
	t.BonusPerOrder = bonusPerOrder
	t.TotalBonus = bonusPerOrder.Mul(decimal.NewFromInt(int64(count)))
	t.Touch()
	t.IncrementVersion()

	if level == previousLevel {
		return nil, nil
	}

	transition := &GradeTransition{
		FromLevel:      previousLevel,
		ToLevel:        level,
		OrdersAtChange: count,
		BonusPerOrder:  bonusPerOrder,
		TotalBonus:     t.TotalBonus,
	}

	if transition.IsLevelUp() {
		t.AddDomainEvent(NewGradeLevelAchievedEvent(t, transition))
	}

	return transition, nil
}

// MarkRewarded raises the rewarded-level floor after a bonus settlement for
// the given level reaches APPROVED or PAID.
func (t *CommissionGradeTracking) MarkRewarded(level int) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_LEVEL", "Rewarded level cannot be negative")
	}
	if level > t.AchievedGradeLevel {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot mark level %d rewarded: achieved level is %d", level, t.AchievedGradeLevel))
	}
	if level <= t.RewardedGradeLevel {
		return nil
	}
	t.RewardedGradeLevel = level
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Deactivate excludes the tracking from computation and reporting
func (t *CommissionGradeTracking) Deactivate() {
	t.IsActive = false
	t.Touch()
	t.IncrementVersion()
}

// Activate re-enables the tracking
func (t *CommissionGradeTracking) Activate() {
	t.IsActive = true
	t.Touch()
	t.IncrementVersion()
}

// GetTotalBonusMoney returns the total bonus as Money
func (t *CommissionGradeTracking) GetTotalBonusMoney() valueobject.Money {
	return valueobject.NewMoneyKRW(t.TotalBonus)
}

// GradeAchievementHistory is an append-only audit row recording one level
// transition of a tracking. Rows are never mutated or deleted.
type GradeAchievementHistory struct {
	shared.BaseEntity
	TrackingID     uuid.UUID       `json:"tracking_id"`
	FromLevel      int             `json:"from_level"`
	ToLevel        int             `json:"to_level"`
	OrdersAtChange int             `json:"orders_at_change"`
	BonusAmount    decimal.Decimal `json:"bonus_amount"`
}

// NewGradeAchievementHistory records a transition for a tracking
func NewGradeAchievementHistory(tracking *CommissionGradeTracking, transition *GradeTransition) *GradeAchievementHistory {
	return &GradeAchievementHistory{
		BaseEntity:     shared.NewBaseEntity(),
		TrackingID:     tracking.ID,
		FromLevel:      transition.FromLevel,
		ToLevel:        transition.ToLevel,
		OrdersAtChange: transition.OrdersAtChange,
		BonusAmount:    transition.TotalBonus,
	}
}
