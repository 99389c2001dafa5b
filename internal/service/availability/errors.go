package availability

import "errors"

var (
	// ErrOverlap возвращается, когда окно пересекается с существующим резервом
	// ресурса с ёмкостью 1
	ErrOverlap = errors.New("window overlaps an existing reservation")

	// ErrCapacityExceeded возвращается, когда суммарная занятость ресурса
	// в окне не оставляет места под запрошенное количество
	ErrCapacityExceeded = errors.New("resource capacity exceeded for window")

	// ErrReservationNotFound возвращается, когда резерв не найден
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrInvalidWindow возвращается при некорректном временном окне
	ErrInvalidWindow = errors.New("invalid time window")

	// ErrInvalidQuantity возвращается при некорректном количестве единиц ёмкости
	ErrInvalidQuantity = errors.New("invalid reservation quantity")

	// ErrUnavailable возвращается, когда конкурентные коммиты по ресурсу
	// не удалось сериализовать за отведённые попытки
	ErrUnavailable = errors.New("resource temporarily unavailable, retry later")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability service: internal error")
)
