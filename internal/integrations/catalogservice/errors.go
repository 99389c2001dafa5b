package catalogservice

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс отсутствует в каталоге
	ErrResourceNotFound = errors.New("resource not found in catalog")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")
)
