package models

import (
	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/policy"
	"github.com/shopspring/decimal"
)

// OrderSnapshotModel is the read model for the orders table. The order
// subsystem owns the table; the settlement core only reads the columns
// needed for settlement creation and fact derivation.
type OrderSnapshotModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNumber    string          `gorm:"type:varchar(50)"`
	CompanyID      uuid.UUID       `gorm:"type:uuid"`
	PolicyID       uuid.UUID       `gorm:"type:uuid"`
	PlanRange      string          `gorm:"type:varchar(20)"`
	ContractPeriod int
	RebateAmount   decimal.Decimal `gorm:"type:decimal(18,4)"`
	Status         string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (OrderSnapshotModel) TableName() string {
	return "orders"
}

// ToDomain converts the read model to a domain order Snapshot
func (m *OrderSnapshotModel) ToDomain() *order.Snapshot {
	return &order.Snapshot{
		ID:             m.ID,
		OrderNumber:    m.OrderNumber,
		CompanyID:      m.CompanyID,
		PolicyID:       m.PolicyID,
		PlanRange:      policy.PlanRange(m.PlanRange),
		ContractPeriod: policy.ContractPeriod(m.ContractPeriod),
		RebateAmount:   m.RebateAmount,
		Status:         order.Status(m.Status),
	}
}
