package events

import "errors"

var (
	// ErrInvalidPayload возвращается при нечитаемом payload задачи
	ErrInvalidPayload = errors.New("events: invalid task payload")

	// ErrPublish возвращается при ошибке постановки события в очередь
	ErrPublish = errors.New("events: failed to enqueue event")
)
