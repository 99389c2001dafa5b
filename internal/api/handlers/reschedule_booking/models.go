package reschedule_booking

import (
	"time"

	rescheduleBooking "github.com/pawdesk/PCS-BookingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	Start string  `json:"start"`         // ISO 8601
	End   *string `json:"end,omitempty"` // ISO 8601, опционально
}

// RescheduleBookingResponse HTTP response model
type RescheduleBookingResponse struct {
	ID         int64  `json:"id"`
	BookingID  string `json:"bookingId"`
	ResourceID string `json:"resourceId"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, userID int64, role string) (*rescheduleBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return nil, err
	}

	var end *time.Time
	if r.End != nil {
		parsed, err := time.Parse(time.RFC3339, *r.End)
		if err != nil {
			return nil, err
		}
		end = &parsed
	}

	return &rescheduleBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
		Role:      role,
		Start:     start,
		End:       end,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		ID:         resp.ID,
		BookingID:  resp.Reference,
		ResourceID: resp.ResourceID,
		Start:      resp.Start.Format(time.RFC3339),
		End:        resp.End.Format(time.RFC3339),
		Status:     resp.Status,
		UpdatedAt:  resp.UpdatedAt.Format(time.RFC3339),
	}
}
