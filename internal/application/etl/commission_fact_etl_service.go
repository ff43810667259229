package etl

import (
	"context"
	"fmt"
	"time"

	appsettlement "github.com/mobidist/backend/internal/application/settlement"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the number of settlements processed per transaction
	DefaultChunkSize = 1000

	// errorRateThreshold aborts a run when more than 10% of processed rows
	// fail, once at least minProcessedForThreshold rows have been seen.
	errorRateThreshold       = 0.10
	minProcessedForThreshold = 10
)

// RunOptions configures one ETL run
type RunOptions struct {
	// Force recomputes every field of existing fact rows instead of the
	// status-only fast path.
	Force bool
	// DryRun reports what would change without writing anything.
	DryRun bool
	// ChunkSize overrides DefaultChunkSize when positive.
	ChunkSize int
}

// RunSummary reports the outcome of one ETL run
type RunSummary struct {
	BatchID    string        `json:"batch_id"`
	Mode       string        `json:"mode"`
	DryRun     bool          `json:"dry_run"`
	Processed  int           `json:"processed"`
	Inserted   int           `json:"inserted"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Failed     int           `json:"failed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// NewBatchID tags an ETL run for traceability across reruns
func NewBatchID(now time.Time) string {
	return "etl_" + now.UTC().Format("20060102150405")
}

func (r *RunSummary) finish() {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt)
}

// CommissionFactETLService rebuilds and reconciles the commission fact
// projection from the settlement ledger and grade tracking state. The job
// is idempotent and re-runnable: facts are looked up by (order, company)
// before insert, per-row failures are counted rather than fatal, and chunks
// commit independently so the last committed chunk is the recovery point.
type CommissionFactETLService struct {
	settlementRepo settlement.SettlementRepository
	factRepo       settlement.CommissionFactRepository
	trackingRepo   settlement.GradeTrackingRepository
	policyRepo     policy.PolicyRepository
	orderLookup    order.SnapshotLookup
	txManager      appsettlement.TransactionManager
	logger         *zap.Logger
	chunkSize      int
}

// NewCommissionFactETLService creates a new CommissionFactETLService
func NewCommissionFactETLService(
	settlementRepo settlement.SettlementRepository,
	factRepo settlement.CommissionFactRepository,
	trackingRepo settlement.GradeTrackingRepository,
	policyRepo policy.PolicyRepository,
	orderLookup order.SnapshotLookup,
	txManager appsettlement.TransactionManager,
	logger *zap.Logger,
) *CommissionFactETLService {
	return &CommissionFactETLService{
		settlementRepo: settlementRepo,
		factRepo:       factRepo,
		trackingRepo:   trackingRepo,
		policyRepo:     policyRepo,
		orderLookup:    orderLookup,
		txManager:      txManager,
		logger:         logger,
		chunkSize:      DefaultChunkSize,
	}
}

// SetChunkSize overrides the default chunk size for runs that do not
// specify one.
func (s *CommissionFactETLService) SetChunkSize(n int) {
	if n > 0 {
		s.chunkSize = n
	}
}

// Rebuild drops the entire fact table and regenerates it from the ledger
func (s *CommissionFactETLService) Rebuild(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	if !opts.DryRun {
		if err := s.factRepo.DeleteAll(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("fact table truncated for rebuild")
	}
	// After a truncate every row is an insert; force recompute regardless.
	opts.Force = true
	return s.run(ctx, "rebuild", time.Time{}, maxTime(), opts)
}

// SyncToday syncs facts for settlements created today (UTC)
func (s *CommissionFactETLService) SyncToday(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	return s.run(ctx, "sync_today", from, from.Add(24*time.Hour), opts)
}

// SyncRecent syncs facts for settlements created in the trailing N days
func (s *CommissionFactETLService) SyncRecent(ctx context.Context, days int, opts RunOptions) (*RunSummary, error) {
	if days <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Days must be positive")
	}
	now := time.Now().UTC()
	from := now.Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))
	return s.run(ctx, fmt.Sprintf("sync_recent_%d", days), from, now.Add(time.Minute), opts)
}

// SyncRange syncs facts for settlements created in [from, to)
func (s *CommissionFactETLService) SyncRange(ctx context.Context, from, to time.Time, opts RunOptions) (*RunSummary, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "End date must be after start date")
	}
	return s.run(ctx, "sync_range", from, to, opts)
}

func maxTime() time.Time {
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}

func (s *CommissionFactETLService) run(ctx context.Context, mode string, from, to time.Time, opts RunOptions) (*RunSummary, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}

	started := time.Now()
	summary := &RunSummary{
		BatchID:   NewBatchID(started),
		Mode:      mode,
		DryRun:    opts.DryRun,
		StartedAt: started,
	}

	total, err := s.settlementRepo.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.logger.Info("etl run started",
		zap.String("batch_id", summary.BatchID),
		zap.String("mode", mode),
		zap.Int64("candidate_rows", total),
		zap.Int("chunk_size", chunkSize),
		zap.Bool("force", opts.Force),
		zap.Bool("dry_run", opts.DryRun))

	for offset := 0; int64(offset) < total; offset += chunkSize {
		// Cancellation is honored at chunk boundaries; committed chunks stay.
		if err := ctx.Err(); err != nil {
			summary.finish()
			return summary, err
		}

		chunk, err := s.settlementRepo.FindCreatedBetween(ctx, from, to, offset, chunkSize)
		if err != nil {
			summary.finish()
			return summary, err
		}
		if len(chunk) == 0 {
			break
		}

		if err := s.processChunk(ctx, chunk, opts, summary); err != nil {
			summary.finish()
			return summary, err
		}

		if err := s.checkErrorRate(summary); err != nil {
			summary.finish()
			s.logger.Error("etl run aborted: error rate exceeded threshold",
				zap.String("batch_id", summary.BatchID),
				zap.Int("processed", summary.Processed),
				zap.Int("failed", summary.Failed))
			return summary, err
		}
	}

	summary.finish()

	s.logger.Info("etl run finished",
		zap.String("batch_id", summary.BatchID),
		zap.String("mode", mode),
		zap.Int("processed", summary.Processed),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// processChunk reconciles one chunk of settlements inside one transaction.
// Row-level failures are logged and counted; they fail the row, not the
// chunk.
func (s *CommissionFactETLService) processChunk(ctx context.Context, chunk []settlement.Settlement, opts RunOptions, summary *RunSummary) error {
	if opts.DryRun {
		for i := range chunk {
			s.reconcileRow(ctx, &chunk[i], opts, summary)
		}
		return nil
	}
	return s.txManager.Execute(ctx, func(ctx context.Context) error {
		for i := range chunk {
			s.reconcileRow(ctx, &chunk[i], opts, summary)
		}
		return nil
	})
}

func (s *CommissionFactETLService) reconcileRow(ctx context.Context, stl *settlement.Settlement, opts RunOptions, summary *RunSummary) {
	summary.Processed++

	outcome, err := s.deriveAndUpsert(ctx, stl, opts, summary.BatchID)
	if err != nil {
		summary.Failed++
		s.logger.Warn("fact derivation failed",
			zap.String("batch_id", summary.BatchID),
			zap.String("order_id", stl.OrderID.String()),
			zap.String("company_id", stl.CompanyID.String()),
			zap.Error(err))
		return
	}

	switch outcome {
	case outcomeInserted:
		summary.Inserted++
	case outcomeUpdated:
		summary.Updated++
	default:
		summary.Unchanged++
	}
}

type upsertOutcome int

const (
	outcomeUnchanged upsertOutcome = iota
	outcomeInserted
	outcomeUpdated
)

// deriveAndUpsert derives the fact for one settlement and writes it:
// insert when no fact exists for the (order, company) pair, full recompute
// when forced, otherwise the status-only fast path. Every row written or
// refreshed carries the run's batch id so one run correlates as one batch.
func (s *CommissionFactETLService) deriveAndUpsert(ctx context.Context, stl *settlement.Settlement, opts RunOptions, batchID string) (upsertOutcome, error) {
	existing, err := s.factRepo.FindByOrderAndCompany(ctx, stl.OrderID, stl.CompanyID)
	if err != nil {
		return outcomeUnchanged, err
	}

	if existing != nil && !opts.Force {
		changed := existing.SyncStatus(stl)
		if !changed {
			return outcomeUnchanged, nil
		}
		if opts.DryRun {
			return outcomeUpdated, nil
		}
		if err := s.factRepo.Save(ctx, existing); err != nil {
			return outcomeUnchanged, err
		}
		return outcomeUpdated, nil
	}

	dims, tracking, err := s.deriveInputs(ctx, stl)
	if err != nil {
		return outcomeUnchanged, err
	}

	if existing != nil {
		if opts.DryRun {
			return outcomeUpdated, nil
		}
		existing.Refresh(stl, dims, tracking, batchID)
		if err := s.factRepo.Save(ctx, existing); err != nil {
			return outcomeUnchanged, err
		}
		return outcomeUpdated, nil
	}

	if opts.DryRun {
		return outcomeInserted, nil
	}
	fact := settlement.NewCommissionFact(stl, dims, tracking, batchID)
	if err := s.factRepo.Save(ctx, fact); err != nil {
		return outcomeUnchanged, err
	}
	return outcomeInserted, nil
}

// deriveInputs resolves the policy dimensions and tracking state for a
// settlement. Missing references are reconciliation failures.
func (s *CommissionFactETLService) deriveInputs(ctx context.Context, stl *settlement.Settlement) (settlement.PolicyDimensions, *settlement.CommissionGradeTracking, error) {
	var dims settlement.PolicyDimensions

	snapshot, err := s.orderLookup.FindByID(ctx, stl.OrderID)
	if err != nil {
		return dims, nil, err
	}
	if snapshot == nil {
		return dims, nil, shared.NewDomainError(shared.CodeReconciliation,
			"Order not found for settlement "+stl.SettlementNumber)
	}

	pol, err := s.policyRepo.FindByID(ctx, stl.PolicyID)
	if err != nil {
		return dims, nil, err
	}
	if pol == nil {
		return dims, nil, shared.NewDomainError(shared.CodeReconciliation,
			"Policy not found for settlement "+stl.SettlementNumber)
	}

	dims = settlement.PolicyDimensions{
		Carrier:        pol.Carrier,
		PlanRange:      snapshot.PlanRange,
		ContractPeriod: snapshot.ContractPeriod,
	}

	trackings, err := s.trackingRepo.FindActiveAt(ctx, stl.CompanyID, stl.PolicyID, stl.CreatedAt)
	if err != nil {
		return dims, nil, err
	}
	if len(trackings) == 0 {
		return dims, nil, nil
	}
	return dims, trackings[0], nil
}

func (s *CommissionFactETLService) checkErrorRate(summary *RunSummary) error {
	if summary.Processed < minProcessedForThreshold {
		return nil
	}
	rate := float64(summary.Failed) / float64(summary.Processed)
	if rate <= errorRateThreshold {
		return nil
	}
	return shared.NewDomainError(shared.CodeThresholdExceeded,
		fmt.Sprintf("ETL error rate %.1f%% exceeded threshold (%d of %d rows failed)",
			rate*100, summary.Failed, summary.Processed))
}

// SyncSettlementStatus walks the fact table and re-derives the status
// columns from the live ledger, updating only drifted rows. A lightweight
// correction path cheaper than a full rebuild.
func (s *CommissionFactETLService) SyncSettlementStatus(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}

	started := time.Now()
	summary := &RunSummary{
		BatchID:   NewBatchID(started),
		Mode:      "sync_status",
		DryRun:    opts.DryRun,
		StartedAt: started,
	}

	total, err := s.factRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	for offset := 0; int64(offset) < total; offset += chunkSize {
		if err := ctx.Err(); err != nil {
			summary.finish()
			return summary, err
		}

		facts, err := s.factRepo.FindAllPaged(ctx, offset, chunkSize)
		if err != nil {
			summary.finish()
			return summary, err
		}
		if len(facts) == 0 {
			break
		}

		err = s.txManager.Execute(ctx, func(ctx context.Context) error {
			for i := range facts {
				s.syncFactStatus(ctx, &facts[i], opts, summary)
			}
			return nil
		})
		if err != nil {
			summary.finish()
			return summary, err
		}

		if err := s.checkErrorRate(summary); err != nil {
			summary.finish()
			return summary, err
		}
	}

	summary.finish()

	s.logger.Info("status sync finished",
		zap.String("batch_id", summary.BatchID),
		zap.Int("processed", summary.Processed),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (s *CommissionFactETLService) syncFactStatus(ctx context.Context, fact *settlement.CommissionFact, opts RunOptions, summary *RunSummary) {
	summary.Processed++

	stl, err := s.settlementRepo.FindByOrderAndCompany(ctx, fact.OrderID, fact.CompanyID)
	if err != nil {
		summary.Failed++
		s.logger.Warn("status sync lookup failed",
			zap.String("order_id", fact.OrderID.String()),
			zap.String("company_id", fact.CompanyID.String()),
			zap.Error(err))
		return
	}
	if stl == nil {
		summary.Failed++
		s.logger.Warn("fact references a missing settlement",
			zap.String("order_id", fact.OrderID.String()),
			zap.String("company_id", fact.CompanyID.String()))
		return
	}

	if !fact.SyncStatus(stl) {
		summary.Unchanged++
		return
	}
	if opts.DryRun {
		summary.Updated++
		return
	}
	if err := s.factRepo.Save(ctx, fact); err != nil {
		summary.Failed++
		return
	}
	summary.Updated++
}
