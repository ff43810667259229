package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the status of a settlement ledger row
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "PENDING"   // Created, awaiting approval
	SettlementStatusApproved  SettlementStatus = "APPROVED"  // Approved, awaiting payout
	SettlementStatusUnpaid    SettlementStatus = "UNPAID"    // Payout attempt failed, may be re-approved
	SettlementStatusPaid      SettlementStatus = "PAID"      // Disbursed; immutable from here on
	SettlementStatusCancelled SettlementStatus = "CANCELLED" // Voided before payout
)

// IsValid checks if the status is a valid SettlementStatus
func (s SettlementStatus) IsValid() bool {
	switch s {
	case SettlementStatusPending, SettlementStatusApproved, SettlementStatusUnpaid,
		SettlementStatusPaid, SettlementStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SettlementStatus
func (s SettlementStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no transition may leave this status
func (s SettlementStatus) IsTerminal() bool {
	return s == SettlementStatusPaid || s == SettlementStatusCancelled
}

// CanApprove returns true if the settlement may be (re-)approved from this status
func (s SettlementStatus) CanApprove() bool {
	return s == SettlementStatusPending || s == SettlementStatusUnpaid
}

// CanCancel returns true if the settlement may be cancelled from this status.
// Paid money cannot be un-disbursed by cancellation.
func (s SettlementStatus) CanCancel() bool {
	return !s.IsTerminal()
}

// PaymentMethod is how a settlement was disbursed
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOffset       PaymentMethod = "OFFSET" // netted against balances owed
	PaymentMethodCash         PaymentMethod = "CASH"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodOffset, PaymentMethodCash:
		return true
	}
	return false
}

// newInvalidTransitionError builds the standard state-machine violation error
func newInvalidTransitionError(op string, from SettlementStatus) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Cannot %s settlement in %s status", op, from))
}

// Settlement is one ledger row: money owed to one company for one order.
// At most one settlement exists per (order, company) pair. It is the single
// source of truth for commission owed and paid; the fact table is only a
// projection of it.
type Settlement struct {
	shared.BaseAggregateRoot
	SettlementNumber string           `json:"settlement_number"`
	OrderID          uuid.UUID        `json:"order_id"`
	OrderNumber      string           `json:"order_number"`
	CompanyID        uuid.UUID        `json:"company_id"`
	CompanyName      string           `json:"company_name"`
	PolicyID         uuid.UUID        `json:"policy_id"`
	RebateAmount     decimal.Decimal  `json:"rebate_amount"`
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

// NewSettlement creates a new pending settlement row
func NewSettlement(
	settlementNumber string,
	orderID uuid.UUID,
	orderNumber string,
	companyID uuid.UUID,
	companyName string,
	policyID uuid.UUID,
	rebateAmount valueobject.Money,
) (*Settlement, error) {
	if settlementNumber == "" {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT_NUMBER", "Settlement number cannot be empty")
	}
	if len(settlementNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT_NUMBER", "Settlement number cannot exceed 50 characters")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order number cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if !rebateAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Rebate amount must be positive")
	}

	s := &Settlement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SettlementNumber:  settlementNumber,
		OrderID:           orderID,
		OrderNumber:       orderNumber,
		CompanyID:         companyID,
		CompanyName:       companyName,
		PolicyID:          policyID,
		RebateAmount:      rebateAmount.Amount(),
		Status:            SettlementStatusPending,
	}

	s.AddDomainEvent(NewSettlementCreatedEvent(s))

	return s, nil
}

// Approve moves the settlement to APPROVED, recording the approver.
// Allowed from PENDING and from UNPAID (payout retry loop).
func (s *Settlement) Approve(approverID uuid.UUID) error {
	if !s.Status.CanApprove() {
		return newInvalidTransitionError("approve", s.Status)
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	s.Status = SettlementStatusApproved
	s.ApproverID = &approverID
	s.ApprovedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementApprovedEvent(s))

	return nil
}

// MarkAsPaid records the disbursement and moves the settlement to PAID.
// PAID is terminal: no further status or amount change is permitted.
func (s *Settlement) MarkAsPaid(method PaymentMethod, reference string) error {
	if s.Status != SettlementStatusApproved {
		return newInvalidTransitionError("pay", s.Status)
	}
	if method != "" && !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Payment method %s is not valid", method))
	}

	now := time.Now()
	s.Status = SettlementStatusPaid
	s.PaymentMethod = method
	s.PaymentReference = reference
	s.PaidAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementPaidEvent(s))

	return nil
}

// MarkAsUnpaid flags an approved settlement whose payout failed.
// The reason is appended to the notes; the row may be re-approved later.
func (s *Settlement) MarkAsUnpaid(reason string) error {
	if s.Status != SettlementStatusApproved {
		return newInvalidTransitionError("mark unpaid", s.Status)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Unpaid reason is required")
	}

	now := time.Now()
	s.Status = SettlementStatusUnpaid
	s.appendNote(fmt.Sprintf("unpaid: %s", reason))
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementMarkedUnpaidEvent(s, reason))

	return nil
}

// Cancel voids the settlement. Disallowed once paid: money already disbursed
// cannot be un-disbursed by cancellation.
func (s *Settlement) Cancel(reason string) error {
	if !s.Status.CanCancel() {
		return newInvalidTransitionError("cancel", s.Status)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	previousStatus := s.Status
	s.Status = SettlementStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementCancelledEvent(s, previousStatus))

	return nil
}

// SetNotes replaces the free-text notes. Rejected once paid.
func (s *Settlement) SetNotes(notes string) error {
	if s.Status == SettlementStatusPaid {
		return newInvalidTransitionError("modify", s.Status)
	}
	s.Notes = notes
	s.Touch()
	s.IncrementVersion()
	return nil
}

func (s *Settlement) appendNote(note string) {
	if s.Notes == "" {
		s.Notes = note
		return
	}
	s.Notes = s.Notes + "\n" + note
}

// GetRebateAmountMoney returns the rebate amount as Money
func (s *Settlement) GetRebateAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKRW(s.RebateAmount)
}

// IsPending returns true if the settlement awaits approval
func (s *Settlement) IsPending() bool {
	return s.Status == SettlementStatusPending
}

// IsApproved returns true if the settlement awaits payout
func (s *Settlement) IsApproved() bool {
	return s.Status == SettlementStatusApproved
}

// IsPaid returns true if the settlement is disbursed
func (s *Settlement) IsPaid() bool {
	return s.Status == SettlementStatusPaid
}

// IsCancelled returns true if the settlement is voided
func (s *Settlement) IsCancelled() bool {
	return s.Status == SettlementStatusCancelled
}

// QualifiesForGrade reports whether this settlement counts toward grade
// achievement. Cancelled rows never qualify.
func (s *Settlement) QualifiesForGrade() bool {
	return s.Status != SettlementStatusCancelled
}
