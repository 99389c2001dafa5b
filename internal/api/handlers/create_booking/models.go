package create_booking

import (
	"time"

	createBooking "github.com/pawdesk/PCS-BookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ResourceID string   `json:"resourceId"`
	PetID      int64    `json:"petId"`
	Start      string   `json:"start"`              // ISO 8601
	End        *string  `json:"end,omitempty"`      // ISO 8601, опционально
	Quantity   int      `json:"quantity,omitempty"` // 0 означает 1
	Price      *float64 `json:"price,omitempty"`

	PetName      *string `json:"petName,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64   `json:"id"`
	BookingID  string  `json:"bookingId"` // внешний reference
	ResourceID string  `json:"resourceId"`
	CustomerID int64   `json:"customerId"`
	PetID      int64   `json:"petId"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`

	ServiceName  string  `json:"serviceName"`
	PetName      *string `json:"petName,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
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

	return &createBooking.Request{
		CustomerID:   customerID,
		PetID:        r.PetID,
		ResourceID:   r.ResourceID,
		Start:        start,
		End:          end,
		Quantity:     r.Quantity,
		Price:        r.Price,
		PetName:      r.PetName,
		ContactPhone: r.ContactPhone,
		Notes:        r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:           resp.ID,
		BookingID:    resp.Reference,
		ResourceID:   resp.ResourceID,
		CustomerID:   resp.CustomerID,
		PetID:        resp.PetID,
		Start:        resp.Start.Format(time.RFC3339),
		End:          resp.End.Format(time.RFC3339),
		Price:        resp.Price,
		Status:       resp.Status,
		ServiceName:  resp.ServiceName,
		PetName:      resp.PetName,
		ContactPhone: resp.ContactPhone,
		Notes:        resp.Notes,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    resp.UpdatedAt.Format(time.RFC3339),
	}
}
