package get_customer_bookings

import (
	"context"

	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error)
	TopServices(ctx context.Context, customerID int64, limit uint64, actor models.Actor) (*models.CustomerStatsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
