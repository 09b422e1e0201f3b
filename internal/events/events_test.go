package events

import (
	"bytes"
	"encoding/json"
	"testing"

	"salonq/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventEntryCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventEntryCreated, EntryEventPayload{EntryID: 7, Phone: "+1", Position: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, callCount)
	assert.Equal(t, EventEntryCreated, received.Type)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded EntryEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, int64(7), decoded.EntryID)
	assert.Equal(t, 2, decoded.Position)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	assert.NoError(t, bus.PublishJSON("unknown", nil))

	var nilBus *EventBus
	assert.NoError(t, nilBus.PublishJSON(EventBotToggled, nil))
}

func TestSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	seen := map[string]int{}
	bus.SubscribeAll(func(e *Event) error { seen[e.Type]++; return nil })

	for _, typ := range Types {
		bus.Publish(&Event{Type: typ})
	}
	assert.Len(t, seen, len(Types))
}

func TestAuditHandler(t *testing.T) {
	metrics.Register()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	bus := NewEventBus()
	bus.SubscribeAll(AuditHandler(&logger))

	active := true
	require.NoError(t, bus.PublishJSON(EventEntryAdvanced, EntryEventPayload{Phone: "+1", Remaining: 3}))
	require.NoError(t, bus.PublishJSON(EventBotToggled, EntryEventPayload{BotActive: &active}))

	assert.Contains(t, buf.String(), `"event":"entry_advanced"`)
	assert.Contains(t, buf.String(), `"remaining":3`)
	assert.Contains(t, buf.String(), `"bot_active":true`)
}
