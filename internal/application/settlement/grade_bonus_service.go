package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GradeBonusService manages the bonus settlement ledger. Bonus rows follow
// their tracking's total bonus while pending; approved and paid amounts are
// frozen and later level-ups open delta rows.
type GradeBonusService struct {
	bonusRepo      settlement.GradeBonusRepository
	trackingRepo   settlement.GradeTrackingRepository
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewGradeBonusService creates a new GradeBonusService
func NewGradeBonusService(
	bonusRepo settlement.GradeBonusRepository,
	trackingRepo settlement.GradeTrackingRepository,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *GradeBonusService {
	return &GradeBonusService{
		bonusRepo:      bonusRepo,
		trackingRepo:   trackingRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// GradeBonusResponse represents a bonus settlement in API responses
type GradeBonusResponse struct {
	ID          uuid.UUID       `json:"id"`
	TrackingID  uuid.UUID       `json:"tracking_id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	PolicyID    uuid.UUID       `json:"policy_id"`
	GradeLevel  int             `json:"grade_level"`
	BonusAmount decimal.Decimal `json:"bonus_amount"`
	Status      string          `json:"status"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

func toBonusResponse(b *settlement.GradeBonusSettlement) *GradeBonusResponse {
	return &GradeBonusResponse{
		ID:          b.ID,
		TrackingID:  b.TrackingID,
		CompanyID:   b.CompanyID,
		PolicyID:    b.PolicyID,
		GradeLevel:  b.GradeLevel,
		BonusAmount: b.BonusAmount,
		Status:      string(b.Status),
		ApprovedAt:  b.ApprovedAt,
		PaidAt:      b.PaidAt,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// GetByID gets a bonus settlement by ID
func (s *GradeBonusService) GetByID(ctx context.Context, id uuid.UUID) (*GradeBonusResponse, error) {
	bonus, err := s.bonusRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bonus == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Bonus settlement not found")
	}
	return toBonusResponse(bonus), nil
}

// ListByTracking lists all bonus settlements for a tracking
func (s *GradeBonusService) ListByTracking(ctx context.Context, trackingID uuid.UUID) ([]GradeBonusResponse, error) {
	rows, err := s.bonusRepo.FindByTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	responses := make([]GradeBonusResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toBonusResponse(&rows[i]))
	}
	return responses, nil
}

// ListByCompany lists all bonus settlements for a company
func (s *GradeBonusService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]GradeBonusResponse, error) {
	rows, err := s.bonusRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]GradeBonusResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toBonusResponse(&rows[i]))
	}
	return responses, nil
}

// SyncWithTracking reconciles the bonus ledger with the tracking's current
// total bonus. The undisbursed remainder (total minus approved and paid
// amounts) lives on a single pending row: created when missing, revised in
// place while pending, cancelled when the remainder drops to zero. Amounts
// already approved or paid are never touched.
//
// Callers must run this inside the same transaction as the recount that
// changed the tracking.
func (s *GradeBonusService) SyncWithTracking(ctx context.Context, tracking *settlement.CommissionGradeTracking) error {
	rows, err := s.bonusRepo.FindByTracking(ctx, tracking.ID)
	if err != nil {
		return err
	}

	settled := decimal.Zero
	var pending *settlement.GradeBonusSettlement
	for i := range rows {
		row := &rows[i]
		if row.IsSettledOrInFlight() {
			settled = settled.Add(row.BonusAmount)
		}
		if row.IsPending() && pending == nil {
			pending = row
		}
	}

	remainder := tracking.TotalBonus.Sub(settled)

	if !remainder.IsPositive() {
		if pending == nil {
			return nil
		}
		if err := pending.Cancel("bonus recalculated to zero after recount"); err != nil {
			return err
		}
		return s.bonusRepo.Save(ctx, pending)
	}

	amount := valueobject.NewMoneyKRW(remainder)

	if pending == nil {
		bonus, err := settlement.NewGradeBonusSettlement(tracking, amount, tracking.AchievedGradeLevel)
		if err != nil {
			return err
		}
		if err := s.bonusRepo.Save(ctx, bonus); err != nil {
			return err
		}
		s.publishEvents(ctx, bonus)
		return nil
	}

	// A recount may lower an unrewarded level below the pending row's
	// level; the pending row is replaced rather than downgraded.
	if tracking.AchievedGradeLevel < pending.GradeLevel {
		if err := pending.Cancel("grade level lowered by recount"); err != nil {
			return err
		}
		if err := s.bonusRepo.Save(ctx, pending); err != nil {
			return err
		}
		replacement, err := settlement.NewGradeBonusSettlement(tracking, amount, tracking.AchievedGradeLevel)
		if err != nil {
			return err
		}
		if err := s.bonusRepo.Save(ctx, replacement); err != nil {
			return err
		}
		s.publishEvents(ctx, replacement)
		return nil
	}

	if err := pending.UpdateAmount(amount, tracking.AchievedGradeLevel); err != nil {
		return err
	}
	return s.bonusRepo.Save(ctx, pending)
}

// Approve approves a pending bonus settlement and raises the tracking's
// rewarded-level floor so later recounts cannot regress below the level
// whose bonus is now committed.
func (s *GradeBonusService) Approve(ctx context.Context, id, approverID uuid.UUID) (*GradeBonusResponse, error) {
	var bonus *settlement.GradeBonusSettlement
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bonus, err = s.bonusRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bonus == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Bonus settlement not found")
		}
		if err := bonus.Approve(approverID); err != nil {
			return err
		}

		tracking, err := s.trackingRepo.FindByIDForUpdate(ctx, bonus.TrackingID)
		if err != nil {
			return err
		}
		if tracking == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Grade tracking not found")
		}
		if err := tracking.MarkRewarded(bonus.GradeLevel); err != nil {
			return err
		}

		if err := s.bonusRepo.Save(ctx, bonus); err != nil {
			return err
		}
		return s.trackingRepo.Save(ctx, tracking)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, bonus)
	s.logger.Info("bonus settlement approved",
		zap.String("bonus_id", bonus.ID.String()),
		zap.Int("grade_level", bonus.GradeLevel),
		zap.String("amount", bonus.BonusAmount.String()))

	return toBonusResponse(bonus), nil
}

// MarkAsPaid records the bonus disbursement
func (s *GradeBonusService) MarkAsPaid(ctx context.Context, id uuid.UUID, method settlement.PaymentMethod, reference string) (*GradeBonusResponse, error) {
	var bonus *settlement.GradeBonusSettlement
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bonus, err = s.bonusRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bonus == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Bonus settlement not found")
		}
		if err := bonus.MarkAsPaid(method, reference); err != nil {
			return err
		}
		return s.bonusRepo.Save(ctx, bonus)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, bonus)
	return toBonusResponse(bonus), nil
}

// Cancel voids a bonus settlement that has not been paid
func (s *GradeBonusService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*GradeBonusResponse, error) {
	var bonus *settlement.GradeBonusSettlement
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bonus, err = s.bonusRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if bonus == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Bonus settlement not found")
		}
		if err := bonus.Cancel(reason); err != nil {
			return err
		}
		return s.bonusRepo.Save(ctx, bonus)
	})
	if err != nil {
		return nil, err
	}
	return toBonusResponse(bonus), nil
}

func (s *GradeBonusService) publishEvents(ctx context.Context, bonus *settlement.GradeBonusSettlement) {
	if s.eventPublisher == nil {
		return
	}
	events := bonus.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish bonus settlement events",
			zap.String("bonus_id", bonus.ID.String()),
			zap.Error(err))
	}
	bonus.ClearDomainEvents()
}
