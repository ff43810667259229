package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderLookup implements order.SnapshotLookup over the orders table
type GormOrderLookup struct {
	db *gorm.DB
}

// NewGormOrderLookup creates a new GormOrderLookup
func NewGormOrderLookup(db *gorm.DB) *GormOrderLookup {
	return &GormOrderLookup{db: db}
}

// FindByID returns the order snapshot, or nil when the order does not exist
func (r *GormOrderLookup) FindByID(ctx context.Context, id uuid.UUID) (*order.Snapshot, error) {
	var model models.OrderSnapshotModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
