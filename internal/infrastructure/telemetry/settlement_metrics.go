package telemetry

import (
	"context"

	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SettlementMetrics records business counters off domain events. It is
// subscribed to the event bus like any other handler, so services stay
// free of instrumentation code.
type SettlementMetrics struct {
	settlementsCreated metric.Int64Counter
	settlementsPaid    metric.Int64Counter
	gradeTransitions   metric.Int64Counter
	bonusesCreated     metric.Int64Counter
}

// NewSettlementMetrics creates the counters on the global meter
func NewSettlementMetrics() (*SettlementMetrics, error) {
	meter := otel.Meter("settlement")

	created, err := meter.Int64Counter("settlements_created_total",
		metric.WithDescription("Settlements created"))
	if err != nil {
		return nil, err
	}
	paid, err := meter.Int64Counter("settlements_paid_total",
		metric.WithDescription("Settlements marked paid"))
	if err != nil {
		return nil, err
	}
	transitions, err := meter.Int64Counter("grade_transitions_total",
		metric.WithDescription("Grade level transitions"))
	if err != nil {
		return nil, err
	}
	bonuses, err := meter.Int64Counter("grade_bonuses_created_total",
		metric.WithDescription("Grade bonus settlements created"))
	if err != nil {
		return nil, err
	}

	return &SettlementMetrics{
		settlementsCreated: created,
		settlementsPaid:    paid,
		gradeTransitions:   transitions,
		bonusesCreated:     bonuses,
	}, nil
}

// Handle increments the counter matching the event type
func (m *SettlementMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch event.EventType() {
	case settlement.EventTypeSettlementCreated:
		m.settlementsCreated.Add(ctx, 1)
	case settlement.EventTypeSettlementPaid:
		m.settlementsPaid.Add(ctx, 1)
	case settlement.EventTypeGradeLevelAchieved:
		if evt, ok := event.(*settlement.GradeLevelAchievedEvent); ok {
			m.gradeTransitions.Add(ctx, 1,
				metric.WithAttributes(attribute.Int("to_level", evt.ToLevel)))
		} else {
			m.gradeTransitions.Add(ctx, 1)
		}
	case settlement.EventTypeGradeBonusCreated:
		m.bonusesCreated.Add(ctx, 1)
	}
	return nil
}

// EventTypes lists the events this handler consumes
func (m *SettlementMetrics) EventTypes() []string {
	return []string{
		settlement.EventTypeSettlementCreated,
		settlement.EventTypeSettlementPaid,
		settlement.EventTypeGradeLevelAchieved,
		settlement.EventTypeGradeBonusCreated,
	}
}

var _ shared.EventHandler = (*SettlementMetrics)(nil)
