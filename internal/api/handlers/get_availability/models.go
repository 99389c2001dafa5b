package get_availability

import (
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	getAvailability "github.com/pawdesk/PCS-BookingService/internal/usecase/get_availability"
)

// SlotResponse один слот доступности
type SlotResponse struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	FreeCapacity  int    `json:"freeCapacity"`
	TotalCapacity int    `json:"totalCapacity"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ResourceID string         `json:"resourceId"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Slots      []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Start:         s.Start.Format(time.RFC3339),
			End:           s.End.Format(time.RFC3339),
			FreeCapacity:  s.FreeCapacity,
			TotalCapacity: s.TotalCapacity,
		})
	}

	return &AvailabilityResponse{
		ResourceID: resp.ResourceID,
		From:       resp.From.Format(time.RFC3339),
		To:         resp.To.Format(time.RFC3339),
		Slots:      slots,
	}
}

// parseTimeParam парсит параметр времени: ISO 8601 или дата YYYY-MM-DD
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateFormat, value)
}
