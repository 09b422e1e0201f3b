package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventEntryCreated     = "entry_created"
	EventEntryAdvanced    = "entry_advanced"
	EventEntryPrioritized = "entry_prioritized"
	EventEntryNotified    = "entry_notified"
	EventBotToggled       = "bot_toggled"
)

// Types lists every event the queue publishes.
var Types = []string{
	EventEntryCreated,
	EventEntryAdvanced,
	EventEntryPrioritized,
	EventEntryNotified,
	EventBotToggled,
}

// EntryEventPayload is the queue entry snapshot handed to event consumers.
type EntryEventPayload struct {
	EntryID          int64  `json:"entry_id,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Position         int    `json:"position,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	Remaining        int    `json:"remaining,omitempty"`
	BotActive        *bool  `json:"bot_active,omitempty"`
	Trigger          string `json:"trigger,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers the handler for every type in Types.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, t := range Types {
		b.Subscribe(t, handler)
	}
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
