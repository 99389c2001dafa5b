package domain

import "time"

// ResourceKind classifies a bookable unit.
type ResourceKind string

const (
	KindServiceSlot ResourceKind = "service_slot" // vet / clinic service time slot
	KindHotelRoom   ResourceKind = "hotel_room"   // pet-hotel room, booked per night
	KindGroomerSlot ResourceKind = "groomer_slot" // groomer calendar slot
)

// Granularity defines how a resource's time windows are compared.
type Granularity string

const (
	GranularityInstant Granularity = "instant" // exact [start, end) instants
	GranularityDay     Granularity = "day"     // whole calendar days
)

// Resource is a bookable, capacity-limited unit supplied by the service
// catalog. The engine treats it as immutable input per request.
type Resource struct {
	ID              string
	Kind            ResourceKind
	Capacity        int           // concurrent occupants / appointments per slot, >= 1
	ServiceDuration time.Duration // declared duration for slot kinds, 0 for rooms
	ServiceName     string
	Price           float64 // opaque, owned by the catalog
}

// Granularity returns the window granularity for the kind:
// hotel rooms are compared per calendar day, everything else per instant.
func (k ResourceKind) Granularity() Granularity {
	if k == KindHotelRoom {
		return GranularityDay
	}
	return GranularityInstant
}

// InitialStatus returns the status a booking of this kind is created in.
// Hotel stays are booked (confirmed) at reservation commit time; service and
// grooming bookings start pending until confirmed.
func (k ResourceKind) InitialStatus() BookingStatus {
	if k == KindHotelRoom {
		return StatusConfirmed
	}
	return StatusPending
}

// IsValid returns true if the kind is recognized.
func (k ResourceKind) IsValid() bool {
	switch k {
	case KindServiceSlot, KindHotelRoom, KindGroomerSlot:
		return true
	}
	return false
}

// ParseResourceKind converts a string to a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	kind := ResourceKind(s)
	if !kind.IsValid() {
		return "", ErrUnknownResourceKind
	}
	return kind, nil
}
