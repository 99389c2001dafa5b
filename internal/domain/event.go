package domain

import "time"

// Domain event kinds emitted after committed ledger mutations.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is the payload handed to the publisher after a commit.
// It is self-describing: it carries the resulting status, not a delta, so
// at-least-once redelivery is safe for consumers to reprocess.
type BookingEvent struct {
	Kind        string    `json:"kind"`
	BookingRef  string    `json:"bookingId"`
	ResourceID  string    `json:"resourceId"`
	CustomerID  int64     `json:"customerId"`
	Status      string    `json:"status"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewBookingEvent builds an event snapshot of the booking's committed state.
func NewBookingEvent(kind string, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Kind:        kind,
		BookingRef:  b.Reference,
		ResourceID:  b.ResourceID,
		CustomerID:  b.CustomerID,
		Status:      string(b.Status),
		WindowStart: b.Window.Start,
		WindowEnd:   b.Window.End,
		Timestamp:   at.UTC(),
	}
}

// EventKindForStatus maps a resulting status to the event kind announced
// for the transition.
func EventKindForStatus(s BookingStatus) string {
	switch s {
	case StatusCancelled, StatusNoShow:
		return EventBookingCancelled
	case StatusCompleted:
		return EventBookingCompleted
	default:
		return EventBookingUpdated
	}
}
