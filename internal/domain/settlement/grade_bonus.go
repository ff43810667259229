package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GradeBonusSettlement is the secondary ledger row for a tracking's
// achievement bonus. It runs the same two-phase state machine as Settlement
// but independently: approving the base commission has no effect on the
// bonus and vice versa.
//
// While PENDING the amount follows the tracking's total bonus; once APPROVED
// or PAID the amount is frozen and a later level-up must open a new row for
// the delta.
type GradeBonusSettlement struct {
	shared.BaseAggregateRoot
	TrackingID       uuid.UUID        `json:"tracking_id"`
	CompanyID        uuid.UUID        `json:"company_id"`
	PolicyID         uuid.UUID        `json:"policy_id"`
	GradeLevel       int              `json:"grade_level"`
	BonusAmount      decimal.Decimal  `json:"bonus_amount"`
	Status           SettlementStatus `json:"status"`
	ApproverID       *uuid.UUID       `json:"approver_id"`
	ApprovedAt       *time.Time       `json:"approved_at"`
	PaymentMethod    PaymentMethod    `json:"payment_method,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	PaidAt           *time.Time       `json:"paid_at"`
	CancelledAt      *time.Time       `json:"cancelled_at"`
	CancelReason     string           `json:"cancel_reason,omitempty"`
	Notes            string           `json:"notes"`
}

// NewGradeBonusSettlement opens a pending bonus settlement for a tracking
func NewGradeBonusSettlement(tracking *CommissionGradeTracking, amount valueobject.Money, gradeLevel int) (*GradeBonusSettlement, error) {
	if tracking == nil {
		return nil, shared.NewDomainError("INVALID_TRACKING", "Tracking cannot be nil")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bonus amount must be positive")
	}
	if gradeLevel <= 0 {
		return nil, shared.NewDomainError("INVALID_LEVEL", "Grade level must be positive")
	}

	b := &GradeBonusSettlement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TrackingID:        tracking.ID,
		CompanyID:         tracking.CompanyID,
		PolicyID:          tracking.PolicyID,
		GradeLevel:        gradeLevel,
		BonusAmount:       amount.Amount(),
		Status:            SettlementStatusPending,
	}

	b.AddDomainEvent(NewGradeBonusCreatedEvent(b))

	return b, nil
}

// UpdateAmount revises the pending amount after a further level-up or
// recount. Rejected once the bonus left PENDING.
func (b *GradeBonusSettlement) UpdateAmount(amount valueobject.Money, gradeLevel int) error {
	if b.Status != SettlementStatusPending {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot update bonus settlement in %s status", b.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Bonus amount must be positive")
	}
	if gradeLevel < b.GradeLevel {
		return shared.NewDomainError("INVALID_LEVEL",
			fmt.Sprintf("Grade level cannot decrease from %d to %d", b.GradeLevel, gradeLevel))
	}

	b.BonusAmount = amount.Amount()
	b.GradeLevel = gradeLevel
	b.Touch()
	b.IncrementVersion()
	return nil
}

// Approve moves the bonus to APPROVED and freezes its amount
func (b *GradeBonusSettlement) Approve(approverID uuid.UUID) error {
	if b.Status != SettlementStatusPending {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot approve bonus settlement in %s status", b.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	b.Status = SettlementStatusApproved
	b.ApproverID = &approverID
	b.ApprovedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewGradeBonusApprovedEvent(b))

	return nil
}

// MarkAsPaid records the bonus disbursement. Terminal.
func (b *GradeBonusSettlement) MarkAsPaid(method PaymentMethod, reference string) error {
	if b.Status != SettlementStatusApproved {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot pay bonus settlement in %s status", b.Status))
	}
	if method != "" && !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %s is not valid", method))
	}

	now := time.Now()
	b.Status = SettlementStatusPaid
	b.PaymentMethod = method
	b.PaymentReference = reference
	b.PaidAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	b.AddDomainEvent(NewGradeBonusPaidEvent(b))

	return nil
}

// Cancel voids the bonus settlement. Disallowed once paid.
func (b *GradeBonusSettlement) Cancel(reason string) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot cancel bonus settlement in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	b.Status = SettlementStatusCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// IsPending returns true if the bonus awaits approval
func (b *GradeBonusSettlement) IsPending() bool {
	return b.Status == SettlementStatusPending
}

// IsSettledOrInFlight returns true once the amount is frozen (approved or paid)
func (b *GradeBonusSettlement) IsSettledOrInFlight() bool {
	return b.Status == SettlementStatusApproved || b.Status == SettlementStatusPaid
}

// GetBonusAmountMoney returns the bonus amount as Money
func (b *GradeBonusSettlement) GetBonusAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKRW(b.BonusAmount)
}
