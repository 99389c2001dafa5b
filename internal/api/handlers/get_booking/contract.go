package get_booking

import (
	"context"

	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetByID(ctx context.Context, id int64, actor models.Actor) (*models.BookingResponse, error)
	GetByReference(ctx context.Context, reference string, actor models.Actor) (*models.BookingResponse, error)
	GetHistory(ctx context.Context, bookingID int64, actor models.Actor) (*models.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
