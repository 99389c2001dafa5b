package get_availability

import (
	"context"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория резервов
type ReservationRepository interface {
	GetActiveOverlapping(ctx context.Context, resourceID string, window domain.TimeWindow) ([]*domain.Reservation, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetResource(ctx context.Context, resourceID string) (*domain.Resource, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
