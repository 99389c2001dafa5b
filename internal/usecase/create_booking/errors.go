package create_booking

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс отсутствует в каталоге
	ErrResourceNotFound = errors.New("create_booking: resource not found")

	// ErrInvalidDate возвращается, когда окно бронирования начинается в прошлом
	ErrInvalidDate = errors.New("create_booking: booking window is in the past")

	// ErrInvalidWindow возвращается при некорректном временном окне
	ErrInvalidWindow = errors.New("create_booking: invalid time window")

	// ErrOverlap возвращается, когда окно пересекается с существующим
	// бронированием ресурса с ёмкостью 1
	ErrOverlap = errors.New("create_booking: window overlaps an existing booking")

	// ErrCapacityExceeded возвращается, когда ёмкость ресурса в окне исчерпана
	ErrCapacityExceeded = errors.New("create_booking: resource capacity exceeded")

	// ErrUnavailable возвращается, когда конкурентные запросы не удалось
	// сериализовать за отведённые попытки
	ErrUnavailable = errors.New("create_booking: resource temporarily unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
