package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}

	if req.End != nil && !req.End.After(req.Start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidWindow)
	}

	return nil
}

// validateStart проверяет, что новое окно не начинается в прошлом
// Для суточных ресурсов сравниваются календарные дни
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
