package catalogservice

import (
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// ResourceModel модель бронируемого ресурса из CatalogService
type ResourceModel struct {
	ID                     string  `json:"id"`
	Kind                   string  `json:"kind"`
	Capacity               int     `json:"capacity"`
	ServiceDurationMinutes int     `json:"service_duration_minutes"`
	ServiceName            string  `json:"service_name"`
	Price                  float64 `json:"price"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToDomain конвертирует модель каталога в доменный ресурс
func (m *ResourceModel) ToDomain() (*domain.Resource, error) {
	kind, err := domain.ParseResourceKind(m.Kind)
	if err != nil {
		return nil, err
	}

	if m.Capacity < 1 {
		return nil, fmt.Errorf("resource %s has invalid capacity %d", m.ID, m.Capacity)
	}

	return &domain.Resource{
		ID:              m.ID,
		Kind:            kind,
		Capacity:        m.Capacity,
		ServiceDuration: time.Duration(m.ServiceDurationMinutes) * time.Minute,
		ServiceName:     m.ServiceName,
		Price:           m.Price,
	}, nil
}
