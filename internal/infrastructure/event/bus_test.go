package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mobidist/backend/internal/domain/settlement"
	"github.com/mobidist/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Settlement", uuid.New())
	return &evt
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers events to matching handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		created := &recordingHandler{types: []string{settlement.EventTypeSettlementCreated}}
		paid := &recordingHandler{types: []string{settlement.EventTypeSettlementPaid}}
		bus.Subscribe(created)
		bus.Subscribe(paid)

		err := bus.Publish(context.Background(), newTestEvent(settlement.EventTypeSettlementCreated))
		require.NoError(t, err)

		assert.Len(t, created.received, 1)
		assert.Empty(t, paid.received)
	})

	t.Run("wildcard handlers receive every event", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		all := &recordingHandler{}
		bus.Subscribe(all)

		err := bus.Publish(context.Background(),
			newTestEvent(settlement.EventTypeSettlementCreated),
			newTestEvent(settlement.EventTypeGradeLevelAchieved),
		)
		require.NoError(t, err)

		assert.Len(t, all.received, 2)
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		failing := &recordingHandler{
			types: []string{settlement.EventTypeSettlementCreated},
			err:   errors.New("boom"),
		}
		healthy := &recordingHandler{types: []string{settlement.EventTypeSettlementCreated}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent(settlement.EventTypeSettlementCreated))
		require.NoError(t, err)

		assert.Len(t, healthy.received, 1)
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		panicking := &recordingHandler{
			types:  []string{settlement.EventTypeSettlementCreated},
			panics: true,
		}
		healthy := &recordingHandler{types: []string{settlement.EventTypeSettlementCreated}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent(settlement.EventTypeSettlementCreated))
		require.NoError(t, err)

		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	t.Run("unsubscribed handlers receive nothing", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		handler := &recordingHandler{types: []string{settlement.EventTypeSettlementCreated}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent(settlement.EventTypeSettlementCreated))
		require.NoError(t, err)

		assert.Empty(t, handler.received)
	})
}
