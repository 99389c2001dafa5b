package get_availability

import "fmt"

// Максимальный размер запрашиваемого диапазона в днях
const maxRangeDays = 92

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ResourceID == "" {
		return fmt.Errorf("%w: resourceID is required", ErrInvalidInput)
	}

	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	if !req.From.Before(req.To) {
		return fmt.Errorf("%w: from must be before to", ErrInvalidRange)
	}

	if req.To.Sub(req.From).Hours() > float64(maxRangeDays*24) {
		return fmt.Errorf("%w: range must not exceed %d days", ErrInvalidRange, maxRangeDays)
	}

	return nil
}
