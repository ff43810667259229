package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/organization"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementService owns the settlement ledger: hierarchy-split creation
// when an order becomes settleable, and the status transitions.
type SettlementService struct {
	settlementRepo  settlement.SettlementRepository
	hierarchy       organization.HierarchyLookup
	splitRepo       policy.SplitRuleRepository
	trackingService *GradeTrackingService
	txManager       TransactionManager
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	settlementRepo settlement.SettlementRepository,
	hierarchy organization.HierarchyLookup,
	splitRepo policy.SplitRuleRepository,
	trackingService *GradeTrackingService,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		settlementRepo:  settlementRepo,
		hierarchy:       hierarchy,
		splitRepo:       splitRepo,
		trackingService: trackingService,
		txManager:       txManager,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID               uuid.UUID       `json:"id"`
	SettlementNumber string          `json:"settlement_number"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	CompanyID        uuid.UUID       `json:"company_id"`
	CompanyName      string          `json:"company_name"`
	PolicyID         uuid.UUID       `json:"policy_id"`
	RebateAmount     decimal.Decimal `json:"rebate_amount"`
	Status           string          `json:"status"`
	ApproverID       *uuid.UUID      `json:"approver_id,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason     string          `json:"cancel_reason,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toSettlementResponse(stl *settlement.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:               stl.ID,
		SettlementNumber: stl.SettlementNumber,
		OrderID:          stl.OrderID,
		OrderNumber:      stl.OrderNumber,
		CompanyID:        stl.CompanyID,
		CompanyName:      stl.CompanyName,
		PolicyID:         stl.PolicyID,
		RebateAmount:     stl.RebateAmount,
		Status:           string(stl.Status),
		ApproverID:       stl.ApproverID,
		ApprovedAt:       stl.ApprovedAt,
		PaymentMethod:    string(stl.PaymentMethod),
		PaymentReference: stl.PaymentReference,
		PaidAt:           stl.PaidAt,
		CancelledAt:      stl.CancelledAt,
		CancelReason:     stl.CancelReason,
		Notes:            stl.Notes,
		CreatedAt:        stl.CreatedAt,
		UpdatedAt:        stl.UpdatedAt,
		Version:          stl.Version,
	}
}

// SettlementListFilter defines filtering options for ledger list queries
type SettlementListFilter struct {
	CompanyID *uuid.UUID `form:"company_id"`
	PolicyID  *uuid.UUID `form:"policy_id"`
	Status    string     `form:"status"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateForOrder opens ledger rows for an order that reached a settleable
// state. A retail-origin rebate is split with the direct parent agency per
// the configured split rules; agency and headquarters orders settle in full
// to the originating company. All resulting rows plus the triggered grade
// recount commit in one transaction.
func (s *SettlementService) CreateForOrder(ctx context.Context, snapshot order.Snapshot) ([]SettlementResponse, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	if !snapshot.IsSettleable() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			"Order is not in a settleable state: "+string(snapshot.Status))
	}
	if !snapshot.RebateAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Order has no rebate amount to settle")
	}

	exists, err := s.settlementRepo.ExistsForOrder(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			"Settlements already exist for order "+snapshot.OrderNumber)
	}

	node, err := s.hierarchy.Lookup(ctx, snapshot.CompanyID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Originating company not found")
	}

	splitPolicy, err := s.splitRepo.LoadSplitPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if splitPolicy == nil {
		splitPolicy = policy.DefaultSplitPolicy()
	}

	total := snapshot.GetRebateAmountMoney()
	ownShare, parentShare := splitPolicy.Split(node.Type, total)

	var parent *organization.CompanyNode
	if parentShare.IsPositive() && node.HasParent() {
		parent, err = s.hierarchy.Lookup(ctx, *node.ParentID)
		if err != nil {
			return nil, err
		}
	}
	if parent == nil {
		// No parent to share with: the full rebate stays with the origin.
		ownShare = total
		parentShare = valueobject.ZeroKRW()
	}

	var created []*settlement.Settlement
	err = s.txManager.Execute(ctx, func(ctx context.Context) error {
		created = created[:0]

		own, err := s.newSettlement(ctx, snapshot, node, ownShare.Amount())
		if err != nil {
			return err
		}
		created = append(created, own)

		if parent != nil && parentShare.IsPositive() {
			parentRow, err := s.newSettlement(ctx, snapshot, parent, parentShare.Amount())
			if err != nil {
				return err
			}
			created = append(created, parentRow)
		}

		if err := s.settlementRepo.SaveAll(ctx, created); err != nil {
			return err
		}

		for _, stl := range created {
			if err := s.trackingService.RecountFor(ctx, stl.CompanyID, stl.PolicyID, stl.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]SettlementResponse, 0, len(created))
	for _, stl := range created {
		s.publishEvents(ctx, stl)
		responses = append(responses, *toSettlementResponse(stl))
	}

	s.logger.Info("settlements created for order",
		zap.String("order_id", snapshot.ID.String()),
		zap.String("order_number", snapshot.OrderNumber),
		zap.Int("row_count", len(created)),
		zap.String("total_rebate", snapshot.RebateAmount.String()))

	return responses, nil
}

func (s *SettlementService) newSettlement(ctx context.Context, snapshot order.Snapshot, node *organization.CompanyNode, amount decimal.Decimal) (*settlement.Settlement, error) {
	number, err := s.settlementRepo.GenerateSettlementNumber(ctx)
	if err != nil {
		return nil, err
	}
	return settlement.NewSettlement(
		number,
		snapshot.ID, snapshot.OrderNumber,
		node.CompanyID, node.CompanyName,
		snapshot.PolicyID,
		valueobject.NewMoneyKRW(amount),
	)
}

// GetByID gets a settlement by ID
func (s *SettlementService) GetByID(ctx context.Context, id uuid.UUID) (*SettlementResponse, error) {
	stl, err := s.settlementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Settlement not found")
	}
	return toSettlementResponse(stl), nil
}

// ListByOrder lists all settlements for an order
func (s *SettlementService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]SettlementResponse, error) {
	rows, err := s.settlementRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]SettlementResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toSettlementResponse(&rows[i]))
	}
	return responses, nil
}

// List lists settlements with filtering
func (s *SettlementService) List(ctx context.Context, filter SettlementListFilter) ([]SettlementResponse, int64, error) {
	domainFilter := settlement.SettlementFilter{
		CompanyID: filter.CompanyID,
		PolicyID:  filter.PolicyID,
		DateFrom:  filter.FromDate,
		DateTo:    filter.ToDate,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if filter.Status != "" {
		status := settlement.SettlementStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "Unknown settlement status "+filter.Status)
		}
		domainFilter.Status = &status
	}

	rows, total, err := s.settlementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SettlementResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toSettlementResponse(&rows[i]))
	}
	return responses, total, nil
}

// Approve approves a settlement. Allowed from PENDING and UNPAID.
func (s *SettlementService) Approve(ctx context.Context, id, approverID uuid.UUID) (*SettlementResponse, error) {
	return s.transition(ctx, id, func(stl *settlement.Settlement) error {
		return stl.Approve(approverID)
	})
}

// MarkAsPaid records the disbursement of an approved settlement
func (s *SettlementService) MarkAsPaid(ctx context.Context, id uuid.UUID, method settlement.PaymentMethod, reference string) (*SettlementResponse, error) {
	return s.transition(ctx, id, func(stl *settlement.Settlement) error {
		return stl.MarkAsPaid(method, reference)
	})
}

// MarkAsUnpaid flags a failed payout; the settlement may be re-approved
func (s *SettlementService) MarkAsUnpaid(ctx context.Context, id uuid.UUID, reason string) (*SettlementResponse, error) {
	return s.transition(ctx, id, func(stl *settlement.Settlement) error {
		return stl.MarkAsUnpaid(reason)
	})
}

// Cancel voids a settlement and recounts the grade trackings it no longer
// qualifies for. Disallowed once paid.
func (s *SettlementService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*SettlementResponse, error) {
	var stl *settlement.Settlement
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		stl, err = s.settlementRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if stl == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Settlement not found")
		}
		if err := stl.Cancel(reason); err != nil {
			return err
		}
		if err := s.settlementRepo.Save(ctx, stl); err != nil {
			return err
		}
		// The cancelled row no longer qualifies; recount the period it
		// was counted in.
		return s.trackingService.RecountFor(ctx, stl.CompanyID, stl.PolicyID, stl.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, stl)
	s.logger.Info("settlement cancelled",
		zap.String("settlement_id", stl.ID.String()),
		zap.String("reason", reason))

	return toSettlementResponse(stl), nil
}

// SetNotes updates the free-text notes on a settlement
func (s *SettlementService) SetNotes(ctx context.Context, id uuid.UUID, notes string) (*SettlementResponse, error) {
	return s.transition(ctx, id, func(stl *settlement.Settlement) error {
		return stl.SetNotes(notes)
	})
}

// transition runs a single-row state change under a row lock so concurrent
// attempts on the same settlement serialize.
func (s *SettlementService) transition(ctx context.Context, id uuid.UUID, mutate func(*settlement.Settlement) error) (*SettlementResponse, error) {
	var stl *settlement.Settlement
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		stl, err = s.settlementRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if stl == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Settlement not found")
		}
		if err := mutate(stl); err != nil {
			return err
		}
		return s.settlementRepo.Save(ctx, stl)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, stl)
	return toSettlementResponse(stl), nil
}

func (s *SettlementService) publishEvents(ctx context.Context, stl *settlement.Settlement) {
	if s.eventPublisher == nil {
		return
	}
	events := stl.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish settlement events",
			zap.String("settlement_id", stl.ID.String()),
			zap.Error(err))
	}
	stl.ClearDomainEvents()
}
