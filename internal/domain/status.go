package domain

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress" // checked in, for hotel stays
	StatusCompleted  BookingStatus = "completed"   // checked out, for hotel stays
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// validTransitions defines the state machine for booking status changes.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// HoldsCapacity returns true if a booking in this status keeps its
// reservation active. Cancelled and no-show bookings free their capacity.
func (s BookingStatus) HoldsCapacity() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, rejecting unknown values.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// StatusTransition describes an attempted status change. Consumed
// synchronously by ValidateTransition; it has no lifecycle of its own.
type StatusTransition struct {
	From        BookingStatus
	To          BookingStatus
	RequestedBy string // actor role
	Reason      string // required for cancellation
}

// ValidateTransition is the pure transition check: it rejects a cancellation
// without a reason before anything else, then consults the transition table.
// No state is touched here; callers mutate only after a nil result.
func ValidateTransition(t StatusTransition) error {
	if t.To == StatusCancelled && t.Reason == "" {
		return ErrReasonRequired
	}
	if !t.To.IsValid() {
		return ErrUnknownStatus
	}
	if !t.From.CanTransitionTo(t.To) {
		return ErrInvalidTransition
	}
	return nil
}
