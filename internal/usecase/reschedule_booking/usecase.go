package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	bookingRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/booking"
	reservationRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/reservation"
	catalogClient "github.com/pawdesk/PCS-BookingService/internal/integrations/catalogservice"
	availabilitySvc "github.com/pawdesk/PCS-BookingService/internal/service/availability"
)

// UseCase use case для переноса бронирования на новое окно
//
// Перенос атомарен: старый резерв освобождается и новый создаётся в одной
// транзакции. Если на новом окне нет места, транзакция откатывается и
// бронирование остаётся на старом окне
type UseCase struct {
	bookingRepo     BookingRepository
	reservationRepo ReservationRepository
	availability    AvailabilityService
	catalogClient   CatalogServiceClient
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	reservationRepo ReservationRepository,
	availability AvailabilityService,
	catalogClient CatalogServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:     bookingRepo,
		reservationRepo: reservationRepo,
		availability:    availability,
		catalogClient:   catalogClient,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case переноса бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking id=%d by user=%d to start=%s",
		req.BookingID, req.UserID, req.Start.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Проверяем права доступа
	if booking.CustomerID != req.UserID && req.Role != domain.ActorRoleStaff && req.Role != domain.ActorRoleSystem {
		uc.logger.Warn("RescheduleBooking: access denied for user=%d to booking id=%d", req.UserID, req.BookingID)
		return nil, ErrAccessDenied
	}

	// 4. Перенос возможен только до начала визита
	if !booking.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: booking id=%d in status=%s cannot be rescheduled",
			req.BookingID, booking.Status)
		return nil, ErrInvalidState
	}

	// 5. Получаем ресурс из каталога
	resource, err := uc.catalogClient.GetResource(ctx, booking.ResourceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrResourceNotFound) {
			uc.logger.Warn("RescheduleBooking: resource=%s not found", booking.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get resource=%s: %v", booking.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// 6. Определяем новое окно
	newWindow, err := uc.resolveWindow(req, resource)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: window resolution failed: %v", err)
		return nil, err
	}

	newWindow = newWindow.Normalize(resource.Kind.Granularity())

	if err := validateStart(newWindow.Start, now, resource.Kind.Granularity()); err != nil {
		uc.logger.Warn("RescheduleBooking: new window start %s is in the past", newWindow.Start.Format(time.RFC3339))
		return nil, err
	}

	oldWindow := booking.Window

	// 7. Переносим резерв и окно бронирования в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		reservation, err := uc.reservationRepo.GetActiveByBookingRef(txCtx, booking.Reference)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				uc.logger.Error("RescheduleBooking: active booking id=%d has no active reservation", req.BookingID)
				return fmt.Errorf("%w: no active reservation for booking", ErrInternal)
			}
			return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
		}

		moved, err := uc.availability.Move(txCtx, reservation.ID, resource, newWindow, reservation.Quantity)
		if err != nil {
			return err
		}

		if err := uc.bookingRepo.UpdateWindow(txCtx, booking.ID, moved.Window); err != nil {
			return fmt.Errorf("%w: failed to update booking window: %v", ErrInternal, err)
		}

		note := fmt.Sprintf("rescheduled from %s to %s", oldWindow, moved.Window)
		_, err = uc.bookingRepo.AppendHistory(txCtx, &domain.StatusHistoryEntry{
			BookingID: booking.ID,
			Status:    booking.Status,
			ActorRole: req.Role,
			Note:      &note,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to append history: %v", ErrInternal, err)
		}

		booking.Window = moved.Window
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, availabilitySvc.ErrOverlap):
			uc.logger.Warn("RescheduleBooking: new window overlaps existing booking on resource=%s", resource.ID)
			return nil, ErrOverlap
		case errors.Is(err, availabilitySvc.ErrCapacityExceeded):
			uc.logger.Warn("RescheduleBooking: capacity exceeded on resource=%s", resource.ID)
			return nil, ErrCapacityExceeded
		case errors.Is(err, availabilitySvc.ErrUnavailable):
			uc.logger.Warn("RescheduleBooking: resource=%s temporarily unavailable", resource.ID)
			return nil, ErrUnavailable
		}
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved from %s to %s",
		booking.ID, oldWindow, booking.Window)

	// 8. Публикуем событие после коммита
	event := domain.NewBookingEvent(domain.EventBookingUpdated, booking, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("RescheduleBooking: failed to publish event for booking=%s: %v", booking.Reference, err)
	}

	return &Response{
		ID:         booking.ID,
		Reference:  booking.Reference,
		ResourceID: booking.ResourceID,
		Start:      booking.Window.Start,
		End:        booking.Window.End,
		Status:     string(booking.Status),
		UpdatedAt:  now,
	}, nil
}

// resolveWindow вычисляет новое окно бронирования
func (uc *UseCase) resolveWindow(req *Request, resource *domain.Resource) (domain.TimeWindow, error) {
	end := time.Time{}
	if req.End != nil {
		end = *req.End
	} else if resource.ServiceDuration > 0 {
		end = req.Start.Add(resource.ServiceDuration)
	} else {
		return domain.TimeWindow{}, fmt.Errorf("%w: end is required for resource %s", ErrInvalidWindow, resource.ID)
	}

	window, err := domain.NewTimeWindow(req.Start, end)
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	return window, nil
}
