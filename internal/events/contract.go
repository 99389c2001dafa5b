package events

import (
	"context"

	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

// BookingsService интерфейс сервиса бронирований для обработки входящих событий
type BookingsService interface {
	ApplyPaymentOutcome(ctx context.Context, req *models.PaymentOutcomeRequest) error
	AnonymizeCustomer(ctx context.Context, customerID int64) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
