package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatusTotalResponse is one per-status aggregate row
type StatusTotalResponse struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// CompanySummaryResponse totals a company's commission ledger over a
// date range, broken down by settlement status
type CompanySummaryResponse struct {
	CompanyID  uuid.UUID             `json:"company_id"`
	From       time.Time             `json:"from"`
	To         time.Time             `json:"to"`
	ByStatus   []StatusTotalResponse `json:"by_status"`
	TotalCount int64                 `json:"total_count"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
}

// SummaryService answers reporting queries over the commission fact
// projection
type SummaryService struct {
	factRepo settlement.CommissionFactRepository
	logger   *zap.Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(factRepo settlement.CommissionFactRepository, logger *zap.Logger) *SummaryService {
	return &SummaryService{factRepo: factRepo, logger: logger}
}

// CompanySummary totals the company's commissions per status for date
// keys in [from, to). Cancelled rows are reported but excluded from the
// grand total.
func (s *SummaryService) CompanySummary(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*CompanySummaryResponse, error) {
	totals, err := s.factRepo.SummarizeByCompany(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &CompanySummaryResponse{
		CompanyID:  companyID,
		From:       from,
		To:         to,
		ByStatus:   make([]StatusTotalResponse, 0, len(totals)),
		GrandTotal: decimal.Zero,
	}
	for _, total := range totals {
		resp.ByStatus = append(resp.ByStatus, StatusTotalResponse{
			Status: string(total.Status),
			Count:  total.Count,
			Total:  total.Total,
		})
		if total.Status != settlement.SettlementStatusCancelled {
			resp.TotalCount += total.Count
			resp.GrandTotal = resp.GrandTotal.Add(total.Total)
		}
	}
	return resp, nil
}
