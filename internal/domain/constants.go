package domain

// Default values
const (
	DefaultReservationQuantity = 1

	// Cancellations closer to the window start than this are flagged as late
	DefaultCancellationNoticeHours = 24
)

// Business validation constants
const (
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Actor roles recorded in the status history
const (
	ActorRoleCustomer = "customer"
	ActorRoleStaff    = "staff"
	ActorRoleSystem   = "system"
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не удерживающих ёмкость ресурса
// Используется при фильтрации бронирований для подсчёта занятости
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses список статусов, удерживающих ёмкость ресурса
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
