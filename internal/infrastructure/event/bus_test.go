package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingHandler records every event it receives
type recordingHandler struct {
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	panics     bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Sale", uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers event to subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{"SaleCompleted"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))

		require.NoError(t, err)
		assert.Len(t, handler.received, 1)
	})

	t.Run("skips handlers subscribed to other types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{"ProductCreated"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))

		require.NoError(t, err)
		assert.Empty(t, handler.received)
	})

	t.Run("wildcard handler receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted")))
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("ProductCreated")))

		assert.Len(t, handler.received, 2)
	})

	t.Run("failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{eventTypes: []string{"SaleCompleted"}, err: errors.New("boom")}
		healthy := &recordingHandler{eventTypes: []string{"SaleCompleted"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))

		require.NoError(t, err)
		assert.Len(t, healthy.received, 1)
	})

	t.Run("panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{eventTypes: []string{"SaleCompleted"}, panics: true}
		healthy := &recordingHandler{eventTypes: []string{"SaleCompleted"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))

		require.NoError(t, err)
		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	t.Run("unsubscribed handler stops receiving events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{"SaleCompleted"}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted")))
		bus.Unsubscribe(handler)
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted")))

		assert.Len(t, handler.received, 1)
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
