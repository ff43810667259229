package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCommissionFactRepository creates a GormCommissionFactRepository with a mocked SQL connection
func newMockCommissionFactRepository(t *testing.T) (*GormCommissionFactRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCommissionFactRepository(gormDB), mock, mockDB
}

func factColumns() []string {
	return []string{"id", "order_id", "order_number", "company_id", "company_name", "policy_id", "date_key", "carrier", "plan_range", "contract_period", "base_commission", "grade_bonus", "total_commission", "settlement_status", "payment_status", "order_count_in_period", "achieved_grade_level", "batch_id"}
}

func TestGormCommissionFactRepository_FindByOrderAndCompany(t *testing.T) {
	t.Run("returns nil without error when absent", func(t *testing.T) {
		repo, mock, mockDB := newMockCommissionFactRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		companyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "commission_facts" WHERE order_id = \$1 AND company_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, companyID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		fact, err := repo.FindByOrderAndCompany(context.Background(), orderID, companyID)

		assert.NoError(t, err)
		assert.Nil(t, fact)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps the row into domain dimensions", func(t *testing.T) {
		repo, mock, mockDB := newMockCommissionFactRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		companyID := uuid.New()
		dateKey := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(factColumns()).
			AddRow(uuid.New(), orderID, "ORD-2025-00050", companyID, "Gangnam Mobile", uuid.New(),
				dateKey, "SKT", "69K_TO_95K", 24,
				decimal.NewFromInt(70000), decimal.NewFromInt(5000), decimal.NewFromInt(75000),
				"APPROVED", "PENDING", 12, 1, "etl_20250801020000")

		mock.ExpectQuery(`SELECT \* FROM "commission_facts" WHERE order_id = \$1 AND company_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, companyID, 1).
			WillReturnRows(rows)

		fact, err := repo.FindByOrderAndCompany(context.Background(), orderID, companyID)

		assert.NoError(t, err)
		require.NotNil(t, fact)
		assert.Equal(t, policy.CarrierSKT, fact.Carrier)
		assert.Equal(t, settlement.SettlementStatusApproved, fact.SettlementStatus)
		assert.True(t, fact.TotalCommission.Equal(decimal.NewFromInt(75000)))
		assert.Equal(t, "etl_20250801020000", fact.BatchID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommissionFactRepository_FindByBatch(t *testing.T) {
	t.Run("returns facts for the batch ordered by date key", func(t *testing.T) {
		repo, mock, mockDB := newMockCommissionFactRepository(t)
		defer mockDB.Close()

		dateKey := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(factColumns()).
			AddRow(uuid.New(), uuid.New(), "ORD-2025-00051", uuid.New(), "Suwon Telecom", uuid.New(),
				dateKey, "KT", "UNDER_33K", 12,
				decimal.NewFromInt(40000), decimal.Zero, decimal.NewFromInt(40000),
				"PENDING", "PENDING", 3, 0, "etl_20250801020000")

		mock.ExpectQuery(`SELECT \* FROM "commission_facts" WHERE batch_id = \$1 ORDER BY date_key, id`).
			WithArgs("etl_20250801020000").
			WillReturnRows(rows)

		facts, err := repo.FindByBatch(context.Background(), "etl_20250801020000")

		assert.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, policy.CarrierKT, facts[0].Carrier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommissionFactRepository_Count(t *testing.T) {
	t.Run("counts fact rows", func(t *testing.T) {
		repo, mock, mockDB := newMockCommissionFactRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "commission_facts"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1204))

		count, err := repo.Count(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(1204), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommissionFactRepository_DeleteAll(t *testing.T) {
	t.Run("issues an unscoped bulk delete", func(t *testing.T) {
		repo, mock, mockDB := newMockCommissionFactRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`DELETE FROM "commission_facts"`).
			WillReturnResult(sqlmock.NewResult(0, 1204))

		err := repo.DeleteAll(context.Background())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
