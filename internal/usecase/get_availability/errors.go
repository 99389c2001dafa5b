package get_availability

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс отсутствует в каталоге
	ErrResourceNotFound = errors.New("get_availability: resource not found")

	// ErrInvalidRange возвращается при некорректном диапазоне дат
	ErrInvalidRange = errors.New("get_availability: invalid date range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
