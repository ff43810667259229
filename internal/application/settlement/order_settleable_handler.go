package settlement

import (
	"context"
	"fmt"

	"github.com/mobidist/backend/internal/domain/order"
	"github.com/mobidist/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderSettleableHandler consumes OrderSettleable events from the order
// subsystem and opens ledger rows. Redelivery is safe: an order that
// already has settlements is skipped.
type OrderSettleableHandler struct {
	settlementService *SettlementService
	logger            *zap.Logger
}

// NewOrderSettleableHandler creates a new handler for order settleable events
func NewOrderSettleableHandler(settlementService *SettlementService, logger *zap.Logger) *OrderSettleableHandler {
	return &OrderSettleableHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderSettleableHandler) EventTypes() []string {
	return []string{order.EventTypeOrderSettleable}
}

// Handle processes an OrderSettleable event
func (h *OrderSettleableHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	settleableEvent, ok := event.(*order.SettleableEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderSettleable),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderSettleable, event.EventType())
	}

	snapshot := settleableEvent.Order
	h.logger.Info("processing order settleable event",
		zap.String("order_id", snapshot.ID.String()),
		zap.String("order_number", snapshot.OrderNumber),
		zap.String("rebate_amount", snapshot.RebateAmount.String()))

	responses, err := h.settlementService.CreateForOrder(ctx, snapshot)
	if err != nil {
		if shared.HasCode(err, shared.CodeAlreadyExists) {
			h.logger.Info("settlements already exist for order, skipping",
				zap.String("order_id", snapshot.ID.String()))
			return nil
		}
		h.logger.Error("failed to create settlements for order",
			zap.String("order_id", snapshot.ID.String()),
			zap.Error(err))
		return err
	}

	h.logger.Info("settlement creation completed",
		zap.String("order_id", snapshot.ID.String()),
		zap.Int("settlement_count", len(responses)))

	return nil
}
