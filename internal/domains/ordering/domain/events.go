package domain

import "time"

// Event is the base interface for ordering domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised once per successful checkout.
type OrderPlaced struct {
	BaseEvent
	OrderID   string
	Total     int64
	ItemNames []string
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "ordering.order.placed"
}

// OrderStatusChanged is raised on every accepted lifecycle transition.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string
	FromStatus Status
	ToStatus   Status
}

// EventName returns the event type identifier.
func (e OrderStatusChanged) EventName() string {
	return "ordering.order.status_changed"
}
