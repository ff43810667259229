package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockFactSummarizer struct {
	mock.Mock
}

func (m *MockFactSummarizer) FindByOrderAndCompany(ctx context.Context, orderID, companyID uuid.UUID) (*settlement.CommissionFact, error) {
	args := m.Called(ctx, orderID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.CommissionFact), args.Error(1)
}

func (m *MockFactSummarizer) FindByBatch(ctx context.Context, batchID string) ([]settlement.CommissionFact, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).([]settlement.CommissionFact), args.Error(1)
}

func (m *MockFactSummarizer) FindAllPaged(ctx context.Context, offset, limit int) ([]settlement.CommissionFact, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]settlement.CommissionFact), args.Error(1)
}

func (m *MockFactSummarizer) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFactSummarizer) SummarizeByCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]settlement.StatusTotal, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]settlement.StatusTotal), args.Error(1)
}

func (m *MockFactSummarizer) Save(ctx context.Context, fact *settlement.CommissionFact) error {
	args := m.Called(ctx, fact)
	return args.Error(0)
}

func (m *MockFactSummarizer) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestSummaryService_CompanySummary(t *testing.T) {
	companyID := uuid.New()
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("cancelled rows reported but excluded from grand total", func(t *testing.T) {
		factRepo := new(MockFactSummarizer)
		factRepo.On("SummarizeByCompany", mock.Anything, companyID, from, to).Return([]settlement.StatusTotal{
			{Status: settlement.SettlementStatusCancelled, Count: 2, Total: decimal.NewFromInt(70000)},
			{Status: settlement.SettlementStatusPaid, Count: 5, Total: decimal.NewFromInt(175000)},
			{Status: settlement.SettlementStatusPending, Count: 3, Total: decimal.NewFromInt(105000)},
		}, nil)
		service := NewSummaryService(factRepo, zap.NewNop())

		resp, err := service.CompanySummary(context.Background(), companyID, from, to)

		require.NoError(t, err)
		assert.Equal(t, companyID, resp.CompanyID)
		assert.Len(t, resp.ByStatus, 3)
		assert.Equal(t, int64(8), resp.TotalCount)
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(280000)),
			"grand total was %s", resp.GrandTotal)
	})

	t.Run("empty range yields zero totals", func(t *testing.T) {
		factRepo := new(MockFactSummarizer)
		factRepo.On("SummarizeByCompany", mock.Anything, companyID, from, to).
			Return([]settlement.StatusTotal{}, nil)
		service := NewSummaryService(factRepo, zap.NewNop())

		resp, err := service.CompanySummary(context.Background(), companyID, from, to)

		require.NoError(t, err)
		assert.Empty(t, resp.ByStatus)
		assert.Zero(t, resp.TotalCount)
		assert.True(t, resp.GrandTotal.IsZero())
	})

	t.Run("repository error propagates", func(t *testing.T) {
		factRepo := new(MockFactSummarizer)
		factRepo.On("SummarizeByCompany", mock.Anything, companyID, from, to).
			Return(nil, assert.AnError)
		service := NewSummaryService(factRepo, zap.NewNop())

		_, err := service.CompanySummary(context.Background(), companyID, from, to)

		assert.Error(t, err)
	})
}
