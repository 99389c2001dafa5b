package domain

import "time"

// ReservationStatus is the state of a capacity hold.
type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "active"
	ReservationReleased ReservationStatus = "released"
)

// Reservation is an entry in the availability index: a capacity hold against
// a resource for a time window. It references its booking by reference string
// and does not own it.
//
// Invariant: for any resource and any instant, the sum of Quantity over
// active reservations overlapping that instant never exceeds the resource
// capacity. The availability service is the sole mutator of this state.
type Reservation struct {
	ID         int64
	ResourceID string
	Window     TimeWindow
	Quantity   int
	BookingRef string // non-owning back-reference
	Status     ReservationStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation still holds capacity.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationActive
}
