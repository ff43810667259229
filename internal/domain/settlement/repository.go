package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mobidist/backend/internal/domain/shared/valueobject"
)

// SettlementFilter holds query options for the settlement ledger
type SettlementFilter struct {
	CompanyID *uuid.UUID
	PolicyID  *uuid.UUID
	Status    *SettlementStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// SettlementRepository persists the settlement ledger
type SettlementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)
	// FindByIDForUpdate loads the row under a row-level lock so that
	// concurrent status transitions serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Settlement, error)
	FindByNumber(ctx context.Context, settlementNumber string) (*Settlement, error)
	FindAll(ctx context.Context, filter SettlementFilter) ([]Settlement, int64, error)

	// ExistsForOrder reports whether any settlement exists for the order
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*Settlement, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Settlement, error)

	// CountQualifying counts settlements for (company, policy) created
	// within [from, to) excluding cancelled rows.
	CountQualifying(ctx context.Context, companyID, policyID uuid.UUID, from, to time.Time) (int, error)

	// FindCreatedBetween pages through settlements created in [from, to),
	// ordered by creation time then id, for ETL chunking.
	FindCreatedBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]Settlement, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)

	// GenerateSettlementNumber issues the next settlement number, e.g. STL-20250801-0001
	GenerateSettlementNumber(ctx context.Context) (string, error)

	Save(ctx context.Context, stl *Settlement) error
	SaveAll(ctx context.Context, stls []*Settlement) error
}

// GradeTrackingRepository persists grade trackings and their
// achievement history
type GradeTrackingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionGradeTracking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*CommissionGradeTracking, error)

	// FindByKey looks up the tracking identified by its natural key
	FindByKey(ctx context.Context, companyID, policyID uuid.UUID, periodType valueobject.PeriodType, periodStart time.Time) (*CommissionGradeTracking, error)

	// FindActiveAt returns the active trackings for (company, policy)
	// whose period contains at.
	FindActiveAt(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*CommissionGradeTracking, error)

	// FindActiveAtForUpdate is FindActiveAt under row-level locks so
	// concurrent recounts for the same trackings serialize.
	FindActiveAtForUpdate(ctx context.Context, companyID, policyID uuid.UUID, at time.Time) ([]*CommissionGradeTracking, error)

	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]CommissionGradeTracking, error)

	Save(ctx context.Context, tracking *CommissionGradeTracking) error
	SaveHistory(ctx context.Context, history *GradeAchievementHistory) error
	FindHistory(ctx context.Context, trackingID uuid.UUID) ([]GradeAchievementHistory, error)
}

// GradeBonusRepository persists the bonus settlement ledger
type GradeBonusRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GradeBonusSettlement, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GradeBonusSettlement, error)

	// FindPendingByTracking returns the open pending bonus row for the
	// tracking, or nil when none exists.
	FindPendingByTracking(ctx context.Context, trackingID uuid.UUID) (*GradeBonusSettlement, error)
	FindByTracking(ctx context.Context, trackingID uuid.UUID) ([]GradeBonusSettlement, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]GradeBonusSettlement, error)

	Save(ctx context.Context, bonus *GradeBonusSettlement) error
}

// StatusTotal aggregates fact rows sharing one settlement status
type StatusTotal struct {
	Status SettlementStatus
	Count  int64
	Total  decimal.Decimal
}

// CommissionFactRepository persists the analytical fact projection
type CommissionFactRepository interface {
	// FindByOrderAndCompany returns the fact for the pair, or nil when
	// none exists yet.
	FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*CommissionFact, error)
	FindByBatch(ctx context.Context, batchID string) ([]CommissionFact, error)

	// FindAllPaged pages through facts ordered by date key then id
	FindAllPaged(ctx context.Context, offset, limit int) ([]CommissionFact, error)
	Count(ctx context.Context) (int64, error)

	// SummarizeByCompany totals commission per settlement status for the
	// company over date keys in [from, to).
	SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]StatusTotal, error)

	Save(ctx context.Context, fact *CommissionFact) error
	// DeleteAll truncates the projection ahead of a full rebuild
	DeleteAll(ctx context.Context) error
}
