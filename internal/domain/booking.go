package domain

import "time"

// Booking is the aggregate root: the customer-facing record of a reservation
// plus its status lifecycle. Bookings are never physically deleted -
// cancellation and no-show are terminal statuses, which keeps the history
// available for audit and reporting.
type Booking struct {
	ID         int64
	Reference  string // stable, externally visible reference (uuid)
	ResourceID string
	CustomerID int64
	PetID      int64
	Window     TimeWindow
	Price      float64
	Status     BookingStatus

	// Denormalized snapshot for history; redacted by Anonymize
	ServiceName  string
	PetName      *string
	ContactPhone *string
	Notes        *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds capacity on its resource.
func (b *Booking) IsActive() bool {
	return b.Status.HoldsCapacity()
}

// CanBeCancelled returns true if the booking can be cancelled.
func (b *Booking) CanBeCancelled() bool {
	return b.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if the time window may still be moved.
// Rescheduling is allowed before the visit starts: from pending or confirmed.
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// StatusHistoryEntry is one append-only record of the booking's status
// history. Entries are written exactly once per transition, in time order.
type StatusHistoryEntry struct {
	ID        int64
	BookingID int64
	Status    BookingStatus
	ActorRole string
	Note      *string
	CreatedAt time.Time
}

// ResourceBookingsFilter selects a resource's bookings for the conflict and
// reporting read paths.
type ResourceBookingsFilter struct {
	ResourceID      string
	Window          *TimeWindow    // only bookings overlapping this window
	Status          *BookingStatus // exact status filter
	IncludeInactive bool           // include cancelled and no-show bookings
}

// ServiceBookingCount is one row of the most-booked-services projection.
type ServiceBookingCount struct {
	ServiceName string
	Bookings    int
}
