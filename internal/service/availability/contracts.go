package availability

import (
	"context"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// ReservationRepository интерфейс репозитория резервов ёмкости
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetActiveByBookingRef(ctx context.Context, bookingRef string) (*domain.Reservation, error)
	GetActiveOverlapping(ctx context.Context, resourceID string, window domain.TimeWindow) ([]*domain.Reservation, error)
	Release(ctx context.Context, id int64) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
