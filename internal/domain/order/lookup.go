package order

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotLookup is the read-side port to the order subsystem. The ETL uses
// it to recover plan and contract dimensions when building fact rows.
type SnapshotLookup interface {
	// FindByID returns the settlement-relevant snapshot of an order,
	// or nil when the order does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Snapshot, error)
}
