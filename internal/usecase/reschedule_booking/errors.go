package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrInvalidState возвращается, когда перенос из текущего статуса невозможен
	ErrInvalidState = errors.New("reschedule_booking: booking cannot be rescheduled in its current status")

	// ErrResourceNotFound возвращается, когда ресурс отсутствует в каталоге
	ErrResourceNotFound = errors.New("reschedule_booking: resource not found")

	// ErrInvalidDate возвращается, когда новое окно начинается в прошлом
	ErrInvalidDate = errors.New("reschedule_booking: new window is in the past")

	// ErrInvalidWindow возвращается при некорректном временном окне
	ErrInvalidWindow = errors.New("reschedule_booking: invalid time window")

	// ErrOverlap возвращается, когда новое окно пересекается с существующим
	// бронированием ресурса с ёмкостью 1
	ErrOverlap = errors.New("reschedule_booking: new window overlaps an existing booking")

	// ErrCapacityExceeded возвращается, когда ёмкость ресурса в новом окне исчерпана
	ErrCapacityExceeded = errors.New("reschedule_booking: resource capacity exceeded")

	// ErrUnavailable возвращается, когда конкурентные запросы не удалось
	// сериализовать за отведённые попытки
	ErrUnavailable = errors.New("reschedule_booking: resource temporarily unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
