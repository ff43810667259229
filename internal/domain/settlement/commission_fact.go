package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the analytical payment dimension derived from a
// settlement's ledger status.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
)

// DerivePaymentStatus maps a ledger status onto the payment dimension.
// Paid and unpaid map directly, everything else reports as pending.
func DerivePaymentStatus(status SettlementStatus) PaymentStatus {
	switch status {
	case SettlementStatusPaid:
		return PaymentStatusPaid
	case SettlementStatusUnpaid:
		return PaymentStatusUnpaid
	default:
		return PaymentStatusPending
	}
}

// PolicyDimensions carries the policy attributes copied onto a fact row
// at build time.
type PolicyDimensions struct {
	Carrier        policy.Carrier
	PlanRange      policy.PlanRange
	ContractPeriod policy.ContractPeriod
}

// CommissionFact is a denormalized projection of one settlement joined
// with the grade tracking state for its company and policy. It carries
// no authority of its own and can be rebuilt from the ledger at any
// time. One row exists per (order, company) pair.
type CommissionFact struct {
	shared.BaseEntity

	OrderID     uuid.UUID
	OrderNumber string
	CompanyID   uuid.UUID
	CompanyName string
	PolicyID    uuid.UUID

	// DateKey is the settlement's creation date, truncated to the day,
	// used as the time dimension for analytical queries.
	DateKey time.Time

	Carrier        policy.Carrier
	PlanRange      policy.PlanRange
	ContractPeriod policy.ContractPeriod

	BaseCommission  decimal.Decimal
	GradeBonus      decimal.Decimal
	TotalCommission decimal.Decimal

	SettlementStatus SettlementStatus
	PaymentStatus    PaymentStatus

	OrderCountInPeriod int
	AchievedGradeLevel int

	BatchID string
}

// NewCommissionFact derives a fact row from a settlement, the policy
// dimensions of its order, and the current grade tracking state.
// tracking may be nil when no tracking exists for the company/policy,
// in which case the grade columns are zero.
func NewCommissionFact(stl *Settlement, dims PolicyDimensions, tracking *CommissionGradeTracking, batchID string) *CommissionFact {
	f := &CommissionFact{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     stl.OrderID,
		OrderNumber: stl.OrderNumber,
		CompanyID:   stl.CompanyID,
		CompanyName: stl.CompanyName,
		PolicyID:    stl.PolicyID,
	}
	f.recompute(stl, dims, tracking, batchID)
	return f
}

// Refresh recomputes every derived column in place. Used by the ETL
// full-recompute path when an existing row must be brought back in
// line with the ledger.
func (f *CommissionFact) Refresh(stl *Settlement, dims PolicyDimensions, tracking *CommissionGradeTracking, batchID string) {
	f.recompute(stl, dims, tracking, batchID)
}

func (f *CommissionFact) recompute(stl *Settlement, dims PolicyDimensions, tracking *CommissionGradeTracking, batchID string) {
	f.DateKey = stl.CreatedAt.UTC().Truncate(24 * time.Hour)
	f.Carrier = dims.Carrier
	f.PlanRange = dims.PlanRange
	f.ContractPeriod = dims.ContractPeriod

	f.BaseCommission = stl.RebateAmount
	f.GradeBonus = decimal.Zero
	f.OrderCountInPeriod = 0
	f.AchievedGradeLevel = 0
	if tracking != nil {
		f.GradeBonus = tracking.BonusPerOrder
		f.OrderCountInPeriod = tracking.CurrentOrders
		f.AchievedGradeLevel = tracking.AchievedGradeLevel
	}
	f.TotalCommission = f.BaseCommission.Add(f.GradeBonus)

	f.SettlementStatus = stl.Status
	f.PaymentStatus = DerivePaymentStatus(stl.Status)
	f.BatchID = batchID
	f.Touch()
}

// SyncStatus re-derives only the status columns from the live
// settlement. Returns true when a drift was found and corrected.
func (f *CommissionFact) SyncStatus(stl *Settlement) bool {
	payment := DerivePaymentStatus(stl.Status)
	if f.SettlementStatus == stl.Status && f.PaymentStatus == payment {
		return false
	}
	f.SettlementStatus = stl.Status
	f.PaymentStatus = payment
	f.Touch()
	return true
}
