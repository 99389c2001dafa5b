package domain

import "errors"

var (
	// ErrWindowInvalid is returned when a time window has start >= end
	ErrWindowInvalid = errors.New("domain: invalid time window, start must be before end")

	// ErrInvalidTransition is returned for a status change not allowed by the state machine
	ErrInvalidTransition = errors.New("domain: invalid status transition")

	// ErrReasonRequired is returned when a cancellation carries no reason
	ErrReasonRequired = errors.New("domain: cancellation reason is required")

	// ErrUnknownStatus is returned when a string does not name a booking status
	ErrUnknownStatus = errors.New("domain: unknown booking status")

	// ErrUnknownResourceKind is returned when a string does not name a resource kind
	ErrUnknownResourceKind = errors.New("domain: unknown resource kind")
)
