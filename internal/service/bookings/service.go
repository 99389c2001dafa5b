package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	bookingRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/booking"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
//
// Смена статуса проходит через доменную машину состояний: переход сначала
// валидируется, и только после этого бронирование мутируется. Запись в
// историю и освобождение ёмкости происходят в одной транзакции с мутацией
type Service struct {
	bookingRepo        BookingRepository
	availability       AvailabilityService
	txManager          TransactionManager
	publisher          EventPublisher
	clock              TimeProvider
	cancellationNotice time.Duration
	logger             Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	availability AvailabilityService,
	txManager TransactionManager,
	publisher EventPublisher,
	clock TimeProvider,
	cancellationNotice time.Duration,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:        bookingRepo,
		availability:       availability,
		txManager:          txManager,
		publisher:          publisher,
		clock:              clock,
		cancellationNotice: cancellationNotice,
		logger:             logger,
	}
}

// ChangeStatus переводит бронирование в новый статус
//
// Переход валидируется машиной состояний до любых изменений: недопустимый
// переход оставляет бронирование нетронутым. Терминальные статусы, не
// удерживающие ёмкость (cancelled, no_show), освобождают резерв ресурса
// в той же транзакции
func (s *Service) ChangeStatus(ctx context.Context, bookingID int64, req *models.ChangeStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("ChangeStatus: booking id=%d to status=%s by user=%d role=%s",
		bookingID, req.Status, req.Actor.UserID, req.Actor.Role)

	booking, err := s.getBooking(ctx, "ChangeStatus", bookingID)
	if err != nil {
		return nil, err
	}

	newStatus, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("ChangeStatus: unknown status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	if err := s.checkStatusChangeAccess(booking, newStatus, req.Actor); err != nil {
		s.logger.Warn("ChangeStatus: access denied for user=%d on booking id=%d", req.Actor.UserID, bookingID)
		return nil, err
	}

	// Валидируем переход до каких-либо изменений
	transition := domain.StatusTransition{
		From:        booking.Status,
		To:          newStatus,
		RequestedBy: req.Actor.Role,
		Reason:      req.Reason,
	}
	if err := domain.ValidateTransition(transition); err != nil {
		switch {
		case errors.Is(err, domain.ErrReasonRequired):
			s.logger.Warn("ChangeStatus: cancellation without reason for booking id=%d", bookingID)
			return nil, ErrReasonRequired
		case errors.Is(err, domain.ErrUnknownStatus):
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
		default:
			s.logger.Warn("ChangeStatus: transition %s -> %s not allowed for booking id=%d",
				booking.Status, newStatus, bookingID)
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, newStatus)
		}
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		// Статус пишется compare-and-swap по прочитанному значению:
		// переход, закоммитившийся конкурентно после валидации,
		// откатывает транзакцию вместо перезаписи терминального статуса
		if newStatus == domain.StatusCancelled {
			if err := s.bookingRepo.Cancel(ctx, bookingID, booking.Status, req.Reason); err != nil {
				return fmt.Errorf("cancel booking: %w", err)
			}
		} else {
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, newStatus); err != nil {
				return fmt.Errorf("update status: %w", err)
			}
		}

		// Статусы, не удерживающие ёмкость, освобождают резерв
		if booking.Status.HoldsCapacity() && !newStatus.HoldsCapacity() {
			if err := s.availability.ReleaseByBooking(ctx, booking.Reference); err != nil {
				return fmt.Errorf("release reservation: %w", err)
			}
		}

		_, err := s.bookingRepo.AppendHistory(ctx, &domain.StatusHistoryEntry{
			BookingID: bookingID,
			Status:    newStatus,
			ActorRole: req.Actor.Role,
			Note:      req.Note,
		})
		if err != nil {
			return fmt.Errorf("append history: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("ChangeStatus: booking id=%d changed concurrently, transition %s -> %s rejected",
				bookingID, booking.Status, newStatus)
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, newStatus)
		}
		s.logger.Error("ChangeStatus: transaction failed for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: ChangeStatus - %v", ErrInternal, err)
	}

	booking, err = s.getBooking(ctx, "ChangeStatus", bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.EventKindForStatus(newStatus), booking)

	s.logger.Info("ChangeStatus: booking id=%d is now status=%s", bookingID, newStatus)
	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование
//
// Клиент может отменить только своё бронирование, сотрудник любое.
// Отмена позже допустимого срока до начала визита помечается как поздняя,
// но не запрещается
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	s.logger.Info("Cancel: booking id=%d by user=%d role=%s", bookingID, req.Actor.UserID, req.Actor.Role)

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	if !req.Actor.Owns(booking) && !req.Actor.IsStaff() {
		s.logger.Warn("Cancel: access denied for user=%d on booking id=%d", req.Actor.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	cutoff := booking.Window.Start.Add(-s.cancellationNotice)
	late := s.clock.Now().After(cutoff)
	if late {
		s.logger.Warn("Cancel: late cancellation of booking id=%d (cutoff was %s)",
			bookingID, cutoff.Format(time.RFC3339))
	}

	resp, err := s.ChangeStatus(ctx, bookingID, &models.ChangeStatusRequest{
		Actor:  req.Actor,
		Status: string(domain.StatusCancelled),
		Reason: req.CancellationReason,
	})
	if err != nil {
		return nil, err
	}

	return &models.CancelBookingResponse{
		Booking:            *resp,
		LateCancellation:   late,
		CancellationCutoff: cutoff.Format(time.RFC3339),
	}, nil
}

// GetByID получает бронирование по ID
// Клиент видит только свои бронирования, сотрудник любые
func (s *Service) GetByID(ctx context.Context, id int64, actor models.Actor) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(booking) && !actor.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetByReference получает бронирование по внешнему reference
func (s *Service) GetByReference(ctx context.Context, reference string, actor models.Actor) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	if !actor.Owns(booking) && !actor.IsStaff() {
		s.logger.Warn("GetByReference: access denied for user=%d to booking id=%d", actor.UserID, booking.ID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetHistory получает историю статусов бронирования
func (s *Service) GetHistory(ctx context.Context, bookingID int64, actor models.Actor) (*models.HistoryResponse, error) {
	booking, err := s.getBooking(ctx, "GetHistory", bookingID)
	if err != nil {
		return nil, err
	}

	if !actor.Owns(booking) && !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	entries, err := s.bookingRepo.GetHistory(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(bookingID, entries), nil
}

// GetCustomerBookings получает бронирования клиента
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	if req.Actor.UserID != req.CustomerID && !req.Actor.IsStaff() {
		s.logger.Warn("GetCustomerBookings: access denied for user=%d to customer=%d", req.Actor.UserID, req.CustomerID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCustomerID(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetResourceBookings получает бронирования ресурса с фильтрацией
// по окну, статусу и включению неактивных. Доступно только сотрудникам
func (s *Service) GetResourceBookings(ctx context.Context, req *models.GetResourceBookingsRequest) (*models.BookingListResponse, error) {
	if !req.Actor.IsStaff() {
		s.logger.Warn("GetResourceBookings: access denied for user=%d", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetResourceBookings: invalid filter for resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByResourceWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetResourceBookings: repository error for resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: GetResourceBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetResourceBookings: fetched %d bookings for resource=%s", len(bookings), req.ResourceID)
	return models.FromDomainBookingList(bookings), nil
}

// ApplyPaymentOutcome применяет исход платежа к бронированию
//
// Вызывается обработчиком событий платёжного сервиса. Идемпотентна:
// повтор доставки по уже подтверждённому бронированию добавляет только
// запись в историю
func (s *Service) ApplyPaymentOutcome(ctx context.Context, req *models.PaymentOutcomeRequest) error {
	s.logger.Info("ApplyPaymentOutcome: booking=%s processed=%t", req.BookingRef, req.Processed)

	booking, err := s.bookingRepo.GetByReference(ctx, req.BookingRef)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("ApplyPaymentOutcome: booking reference=%s not found", req.BookingRef)
			return ErrBookingNotFound
		}
		s.logger.Error("ApplyPaymentOutcome: repository error for reference=%s: %v", req.BookingRef, err)
		return fmt.Errorf("%w: ApplyPaymentOutcome - repository error: %v", ErrInternal, err)
	}

	note := req.Detail
	if note == "" {
		if req.Processed {
			note = "payment processed"
		} else {
			note = "payment failed"
		}
	}

	// Фиксируем исход платежа в истории при текущем статусе
	_, err = s.bookingRepo.AppendHistory(ctx, &domain.StatusHistoryEntry{
		BookingID: booking.ID,
		Status:    booking.Status,
		ActorRole: domain.ActorRoleSystem,
		Note:      &note,
	})
	if err != nil {
		s.logger.Error("ApplyPaymentOutcome: append history failed for booking id=%d: %v", booking.ID, err)
		return fmt.Errorf("%w: ApplyPaymentOutcome - append history: %v", ErrInternal, err)
	}

	// Успешный платёж подтверждает ожидающее бронирование
	if req.Processed && booking.Status == domain.StatusPending {
		_, err = s.ChangeStatus(ctx, booking.ID, &models.ChangeStatusRequest{
			Actor:  models.Actor{Role: domain.ActorRoleSystem},
			Status: string(domain.StatusConfirmed),
		})
		return err
	}

	return nil
}

// AnonymizeCustomer стирает персональные данные клиента из его бронирований
// Сами бронирования и история статусов сохраняются для отчётности
func (s *Service) AnonymizeCustomer(ctx context.Context, customerID int64) (int64, error) {
	affected, err := s.bookingRepo.AnonymizeByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("AnonymizeCustomer: repository error for customer=%d: %v", customerID, err)
		return 0, fmt.Errorf("%w: AnonymizeCustomer - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AnonymizeCustomer: anonymized %d bookings for customer=%d", affected, customerID)
	return affected, nil
}

// TopServices возвращает самые бронируемые услуги клиента
func (s *Service) TopServices(ctx context.Context, customerID int64, limit uint64, actor models.Actor) (*models.CustomerStatsResponse, error) {
	if actor.UserID != customerID && !actor.IsStaff() {
		return nil, ErrAccessDenied
	}

	if limit == 0 {
		limit = 5
	}

	counts, err := s.bookingRepo.TopServicesByCustomer(ctx, customerID, limit)
	if err != nil {
		s.logger.Error("TopServices: repository error for customer=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: TopServices - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceCounts(customerID, counts), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, method string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}

// checkStatusChangeAccess проверяет права на смену статуса
// Клиент может только отменить своё бронирование, остальные переходы
// доступны сотрудникам и системным операциям
func (s *Service) checkStatusChangeAccess(booking *domain.Booking, newStatus domain.BookingStatus, actor models.Actor) error {
	if actor.IsStaff() {
		return nil
	}
	if actor.Owns(booking) && newStatus == domain.StatusCancelled {
		return nil
	}
	return ErrAccessDenied
}

// publishEvent публикует доменное событие после коммита
// Ошибка публикации не откатывает уже закоммиченное изменение
func (s *Service) publishEvent(ctx context.Context, kind string, booking *domain.Booking) {
	event := domain.NewBookingEvent(kind, booking, s.clock.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publishEvent: failed to publish %s for booking=%s: %v", kind, booking.Reference, err)
	}
}
