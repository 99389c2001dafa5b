package create_booking

import (
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.PetID <= 0 {
		return fmt.Errorf("%w: petID must be positive", ErrInvalidInput)
	}

	if req.ResourceID == "" {
		return fmt.Errorf("%w: resourceID is required", ErrInvalidInput)
	}

	if req.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}

	if req.End != nil && !req.End.After(req.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidWindow)
	}

	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}

	if req.Price != nil && *req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes too long", ErrInvalidInput)
	}

	return nil
}

// validateStart проверяет, что окно не начинается в прошлом
// Для суточных ресурсов сравниваются календарные дни: бронирование на
// сегодняшнюю ночь допустимо в любое время суток
func validateStart(start time.Time, now time.Time, granularity domain.Granularity) error {
	if granularity == domain.GranularityDay {
		if truncateToDay(start).Before(truncateToDay(now)) {
			return ErrInvalidDate
		}
		return nil
	}

	if start.Before(now) {
		return ErrInvalidDate
	}
	return nil
}

// truncateToDay обнуляет время, оставляя только дату (UTC)
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
