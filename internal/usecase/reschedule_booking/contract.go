package reschedule_booking

import (
	"context"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateWindow(ctx context.Context, id int64, window domain.TimeWindow) error
	AppendHistory(ctx context.Context, entry *domain.StatusHistoryEntry) (*domain.StatusHistoryEntry, error)
}

// ReservationRepository интерфейс репозитория резервов
type ReservationRepository interface {
	GetActiveByBookingRef(ctx context.Context, bookingRef string) (*domain.Reservation, error)
}

// AvailabilityService интерфейс сервиса учёта ёмкости
type AvailabilityService interface {
	Move(ctx context.Context, reservationID int64, resource *domain.Resource, newWindow domain.TimeWindow, quantity int) (*domain.Reservation, error)
}

// CatalogServiceClient интерфейс клиента для CatalogService
type CatalogServiceClient interface {
	GetResource(ctx context.Context, resourceID string) (*domain.Resource, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
