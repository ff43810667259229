package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/mobidist/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GradeTrackingService manages achievement tracking: target setup, recounts
// driven by ledger changes, and the resulting bonus ledger updates.
type GradeTrackingService struct {
	trackingRepo   settlement.GradeTrackingRepository
	settlementRepo settlement.SettlementRepository
	policyRepo     policy.PolicyRepository
	bonusService   *GradeBonusService
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewGradeTrackingService creates a new GradeTrackingService
func NewGradeTrackingService(
	trackingRepo settlement.GradeTrackingRepository,
	settlementRepo settlement.SettlementRepository,
	policyRepo policy.PolicyRepository,
	bonusService *GradeBonusService,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *GradeTrackingService {
	return &GradeTrackingService{
		trackingRepo:   trackingRepo,
		settlementRepo: settlementRepo,
		policyRepo:     policyRepo,
		bonusService:   bonusService,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// SetupTrackingRequest is the request for setting up an achievement target
type SetupTrackingRequest struct {
	CompanyID    uuid.UUID              `json:"company_id" binding:"required"`
	PolicyID     uuid.UUID              `json:"policy_id" binding:"required"`
	PeriodType   valueobject.PeriodType `json:"period_type" binding:"required"`
	Year         int                    `json:"year" binding:"required"`
	Month        int                    `json:"month"`
	Quarter      int                    `json:"quarter"`
	TargetOrders int                    `json:"target_orders" binding:"required,gt=0"`
}

// TrackingResponse represents a grade tracking in API responses
type TrackingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"company_id"`
	PolicyID           uuid.UUID       `json:"policy_id"`
	PeriodType         string          `json:"period_type"`
	PeriodStart        time.Time       `json:"period_start"`
	PeriodEnd          time.Time       `json:"period_end"`
	TargetOrders       int             `json:"target_orders"`
	CurrentOrders      int             `json:"current_orders"`
	AchievedGradeLevel int             `json:"achieved_grade_level"`
	RewardedGradeLevel int             `json:"rewarded_grade_level"`
	BonusPerOrder      decimal.Decimal `json:"bonus_per_order"`
	TotalBonus         decimal.Decimal `json:"total_bonus"`
	AchievementRate    decimal.Decimal `json:"achievement_rate"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

func toTrackingResponse(t *settlement.CommissionGradeTracking) *TrackingResponse {
	return &TrackingResponse{
		ID:                 t.ID,
		CompanyID:          t.CompanyID,
		PolicyID:           t.PolicyID,
		PeriodType:         string(t.PeriodType),
		PeriodStart:        t.PeriodStart,
		PeriodEnd:          t.PeriodEnd,
		TargetOrders:       t.TargetOrders,
		CurrentOrders:      t.CurrentOrders,
		AchievedGradeLevel: t.AchievedGradeLevel,
		RewardedGradeLevel: t.RewardedGradeLevel,
		BonusPerOrder:      t.BonusPerOrder,
		TotalBonus:         t.TotalBonus,
		AchievementRate:    t.AchievementRate(),
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		Version:            t.Version,
	}
}

// SetupTarget creates achievement tracking for a company, policy and period.
// Fails with DUPLICATE_TRACKING when tracking already exists for the same
// (company, policy, period type, period start) tuple.
func (s *GradeTrackingService) SetupTarget(ctx context.Context, req SetupTrackingRequest) (*TrackingResponse, error) {
	pol, err := s.policyRepo.FindByID(ctx, req.PolicyID)
	if err != nil {
		return nil, err
	}
	if pol == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Policy not found")
	}

	tracking, err := s.buildTracking(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.trackingRepo.FindByKey(ctx, req.CompanyID, req.PolicyID, tracking.PeriodType, tracking.PeriodStart)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeDuplicateTracking,
			"Grade tracking already exists for this company, policy and period")
	}

	if err := s.trackingRepo.Save(ctx, tracking); err != nil {
		return nil, err
	}

	s.logger.Info("grade tracking created",
		zap.String("tracking_id", tracking.ID.String()),
		zap.String("company_id", req.CompanyID.String()),
		zap.String("policy_id", req.PolicyID.String()),
		zap.String("period_type", string(tracking.PeriodType)),
		zap.Int("target_orders", req.TargetOrders))

	return toTrackingResponse(tracking), nil
}

func (s *GradeTrackingService) buildTracking(req SetupTrackingRequest) (*settlement.CommissionGradeTracking, error) {
	switch req.PeriodType {
	case valueobject.PeriodTypeMonthly:
		return settlement.NewMonthlyTracking(req.CompanyID, req.PolicyID, req.Year, time.Month(req.Month), req.TargetOrders)
	case valueobject.PeriodTypeQuarterly:
		return settlement.NewQuarterlyTracking(req.CompanyID, req.PolicyID, req.Year, req.Quarter, req.TargetOrders)
	case valueobject.PeriodTypeYearly:
		return settlement.NewYearlyTracking(req.CompanyID, req.PolicyID, req.Year, req.TargetOrders)
	default:
		return nil, shared.NewDomainError("INVALID_PERIOD", "Unsupported period type")
	}
}

// GetByID gets a tracking by ID
func (s *GradeTrackingService) GetByID(ctx context.Context, id uuid.UUID) (*TrackingResponse, error) {
	tracking, err := s.trackingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Grade tracking not found")
	}
	return toTrackingResponse(tracking), nil
}

// ListByCompany lists trackings for a company
func (s *GradeTrackingService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]TrackingResponse, error) {
	rows, err := s.trackingRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]TrackingResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, *toTrackingResponse(&rows[i]))
	}
	return responses, nil
}

// HistoryResponse represents one achievement transition in API responses
type HistoryResponse struct {
	ID             uuid.UUID       `json:"id"`
	TrackingID     uuid.UUID       `json:"tracking_id"`
	FromLevel      int             `json:"from_level"`
	ToLevel        int             `json:"to_level"`
	OrdersAtChange int             `json:"orders_at_change"`
	BonusAmount    decimal.Decimal `json:"bonus_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// GetHistory returns the achievement history of a tracking
func (s *GradeTrackingService) GetHistory(ctx context.Context, trackingID uuid.UUID) ([]HistoryResponse, error) {
	rows, err := s.trackingRepo.FindHistory(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	responses := make([]HistoryResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, HistoryResponse{
			ID:             row.ID,
			TrackingID:     row.TrackingID,
			FromLevel:      row.FromLevel,
			ToLevel:        row.ToLevel,
			OrdersAtChange: row.OrdersAtChange,
			BonusAmount:    row.BonusAmount,
			CreatedAt:      row.CreatedAt,
		})
	}
	return responses, nil
}

// RecountTracking recomputes one tracking from the live ledger inside its
// own transaction. Exposed for manual correction.
func (s *GradeTrackingService) RecountTracking(ctx context.Context, trackingID uuid.UUID) (*TrackingResponse, error) {
	var tracking *settlement.CommissionGradeTracking
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		tracking, err = s.trackingRepo.FindByIDForUpdate(ctx, trackingID)
		if err != nil {
			return err
		}
		if tracking == nil {
			return shared.NewDomainError(shared.CodeNotFound, "Grade tracking not found")
		}
		return s.recount(ctx, tracking)
	})
	if err != nil {
		return nil, err
	}
	return toTrackingResponse(tracking), nil
}

// RecountFor recomputes every active tracking for (company, policy) whose
// period contains at. Called by the ledger after settlement creation or
// cancellation; must run inside the caller's transaction so the ledger
// change and the recount commit together.
func (s *GradeTrackingService) RecountFor(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) error {
	trackings, err := s.trackingRepo.FindActiveAtForUpdate(ctx, companyID, policyID, at)
	if err != nil {
		return err
	}
	for _, tracking := range trackings {
		if err := s.recount(ctx, tracking); err != nil {
			return err
		}
	}
	return nil
}

// recount is the shared read-recompute-write cycle: count qualifying
// settlements within the tracking period, re-derive the level from the
// policy's grade schedule, persist, and reconcile the bonus ledger.
func (s *GradeTrackingService) recount(ctx context.Context, tracking *settlement.CommissionGradeTracking) error {
	pol, err := s.policyRepo.FindByID(ctx, tracking.PolicyID)
	if err != nil {
		return err
	}
	if pol == nil {
		return shared.NewDomainError(shared.CodeNotFound, "Policy not found for tracking")
	}

	count, err := s.settlementRepo.CountQualifying(ctx, tracking.CompanyID, tracking.PolicyID, tracking.PeriodStart, tracking.PeriodEnd)
	if err != nil {
		return err
	}

	transition, err := tracking.ApplyOrderCount(count, pol.GradeTiers)
	if err != nil {
		return err
	}

	if err := s.trackingRepo.Save(ctx, tracking); err != nil {
		return err
	}

	if transition != nil {
		history := settlement.NewGradeAchievementHistory(tracking, transition)
		if err := s.trackingRepo.SaveHistory(ctx, history); err != nil {
			return err
		}
		s.logger.Info("grade level changed",
			zap.String("tracking_id", tracking.ID.String()),
			zap.Int("from_level", transition.FromLevel),
			zap.Int("to_level", transition.ToLevel),
			zap.Int("orders", transition.OrdersAtChange))
	}

	if err := s.bonusService.SyncWithTracking(ctx, tracking); err != nil {
		return err
	}

	s.publishEvents(ctx, tracking)
	return nil
}

// Deactivate excludes a tracking from computation and reporting
func (s *GradeTrackingService) Deactivate(ctx context.Context, id uuid.UUID) (*TrackingResponse, error) {
	tracking, err := s.trackingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Grade tracking not found")
	}
	tracking.Deactivate()
	if err := s.trackingRepo.Save(ctx, tracking); err != nil {
		return nil, err
	}
	return toTrackingResponse(tracking), nil
}

func (s *GradeTrackingService) publishEvents(ctx context.Context, tracking *settlement.CommissionGradeTracking) {
	if s.eventPublisher == nil {
		return
	}
	events := tracking.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish tracking events",
			zap.String("tracking_id", tracking.ID.String()),
			zap.Error(err))
	}
	tracking.ClearDomainEvents()
}
