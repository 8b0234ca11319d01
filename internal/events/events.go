package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventAppointmentCreated     = "appointment_created"
	EventAppointmentConfirmed   = "appointment_confirmed"
	EventAppointmentCancelled   = "appointment_cancelled"
	EventAppointmentRescheduled = "appointment_rescheduled"
	EventAppointmentCompleted   = "appointment_completed"
	EventAppointmentNoShow      = "appointment_no_show"
)

// AppointmentEventPayload is the minimal appointment snapshot consumers get.
type AppointmentEventPayload struct {
	AppointmentID int64  `json:"appointment_id"`
	Code          string `json:"code"`
	SalonID       int64  `json:"salon_id"`
	StaffID       *int64 `json:"staff_id,omitempty"`
	ServiceName   string `json:"service_name"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	ChangedBy     string `json:"changed_by,omitempty"`
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

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
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
