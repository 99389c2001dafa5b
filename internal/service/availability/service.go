package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	reservationRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/reservation"
	"github.com/pawdesk/PCS-BookingService/pkg/dbmetrics"
	"github.com/pawdesk/PCS-BookingService/pkg/txmanager"
)

// Service сервис учёта ёмкости ресурсов
//
// Единственная точка, через которую ёмкость резервируется и освобождается.
// Протокол check-and-reserve атомарен: проверка занятости и запись резерва
// выполняются в одной serializable-транзакции, между ними не бывает окна,
// в котором конкурирующий запрос может увидеть старое состояние
type Service struct {
	reservationRepo ReservationRepository
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый экземпляр сервиса ёмкости
func NewService(
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// CheckAndReserve атомарно проверяет свободную ёмкость и резервирует её
//
// Окно нормализуется по гранулярности ресурса (суточные ресурсы занимают
// целые дни). Возвращает созданный резерв либо ErrOverlap / ErrCapacityExceeded,
// если места нет; в этом случае ничего не записывается
func (s *Service) CheckAndReserve(ctx context.Context, resource *domain.Resource, window domain.TimeWindow, quantity int, bookingRef string) (*domain.Reservation, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity=%d", ErrInvalidQuantity, quantity)
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	window = window.Normalize(resource.Kind.Granularity())

	var created *domain.Reservation

	reserve := func(ctx context.Context) error {
		held, err := s.heldQuantity(ctx, resource.ID, window)
		if err != nil {
			return err
		}

		if held+quantity > resource.Capacity {
			s.logger.Warn("CheckAndReserve: no capacity for resource=%s window=%s: held=%d, requested=%d, capacity=%d",
				resource.ID, window, held, quantity, resource.Capacity)
			if resource.Capacity == 1 {
				return ErrOverlap
			}
			return ErrCapacityExceeded
		}

		created, err = s.reservationRepo.Create(ctx, &domain.Reservation{
			ResourceID: resource.ID,
			Window:     window,
			Quantity:   quantity,
			BookingRef: bookingRef,
			Status:     domain.ReservationActive,
		})
		if err != nil {
			return fmt.Errorf("%w: CheckAndReserve - create reservation: %w", ErrInternal, err)
		}

		return nil
	}

	// Если вызывающий уже открыл транзакцию (создание бронирования),
	// работаем внутри неё, иначе открываем свою serializable-транзакцию
	var err error
	if dbmetrics.IsInTransaction(ctx) {
		err = reserve(ctx)
	} else {
		err = s.txManager.DoSerializable(ctx, reserve)
	}

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			s.logger.Warn("CheckAndReserve: serialization failure for resource=%s, window=%s", resource.ID, window)
			return nil, ErrUnavailable
		}
		return nil, err
	}

	s.logger.Info("CheckAndReserve: reserved %d unit(s) of resource=%s for window=%s, reservation=%d",
		quantity, resource.ID, window, created.ID)
	return created, nil
}

// Release освобождает резерв по ID
// Идемпотентна: освобождение уже освобождённого резерва не является ошибкой
func (s *Service) Release(ctx context.Context, reservationID int64) error {
	released, err := s.reservationRepo.Release(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("%w: Release - repository error: %v", ErrInternal, err)
	}

	if released {
		s.logger.Info("Release: released reservation=%d", reservationID)
	} else {
		s.logger.Info("Release: reservation=%d already released, nothing to do", reservationID)
	}
	return nil
}

// ReleaseByBooking освобождает активный резерв бронирования
// Отсутствие активного резерва не является ошибкой (повторная отмена)
func (s *Service) ReleaseByBooking(ctx context.Context, bookingRef string) error {
	res, err := s.reservationRepo.GetActiveByBookingRef(ctx, bookingRef)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Info("ReleaseByBooking: no active reservation for booking=%s, nothing to do", bookingRef)
			return nil
		}
		return fmt.Errorf("%w: ReleaseByBooking - repository error: %v", ErrInternal, err)
	}

	return s.Release(ctx, res.ID)
}

// Move переносит резерв на новое окно и/или ресурс
//
// Старый резерв освобождается и новый создаётся в одной транзакции: если
// на новом окне нет места, транзакция откатывается и старый резерв остаётся
// активным
func (s *Service) Move(ctx context.Context, reservationID int64, resource *domain.Resource, newWindow domain.TimeWindow, quantity int) (*domain.Reservation, error) {
	var moved *domain.Reservation

	move := func(ctx context.Context) error {
		old, err := s.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: Move - repository error: %w", ErrInternal, err)
		}

		if !old.IsActive() {
			return ErrReservationNotFound
		}

		if _, err := s.reservationRepo.Release(ctx, old.ID); err != nil {
			return fmt.Errorf("%w: Move - release old reservation: %w", ErrInternal, err)
		}

		moved, err = s.CheckAndReserve(ctx, resource, newWindow, quantity, old.BookingRef)
		return err
	}

	var err error
	if dbmetrics.IsInTransaction(ctx) {
		err = move(ctx)
	} else {
		err = s.txManager.DoSerializable(ctx, move)
	}

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	s.logger.Info("Move: moved reservation=%d to reservation=%d, resource=%s, window=%s",
		reservationID, moved.ID, resource.ID, moved.Window)
	return moved, nil
}

// QueryFreeCapacity возвращает свободную ёмкость ресурса в окне
// Снимок на момент чтения, без блокировок
func (s *Service) QueryFreeCapacity(ctx context.Context, resource *domain.Resource, window domain.TimeWindow) (int, error) {
	if err := window.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	window = window.Normalize(resource.Kind.Granularity())

	held, err := s.heldQuantity(ctx, resource.ID, window)
	if err != nil {
		return 0, err
	}

	free := resource.Capacity - held
	if free < 0 {
		free = 0
	}
	return free, nil
}

// heldQuantity суммирует занятую ёмкость по активным резервам,
// пересекающим окно
func (s *Service) heldQuantity(ctx context.Context, resourceID string, window domain.TimeWindow) (int, error) {
	reservations, err := s.reservationRepo.GetActiveOverlapping(ctx, resourceID, window)
	if err != nil {
		return 0, fmt.Errorf("%w: heldQuantity - repository error: %w", ErrInternal, err)
	}

	held := 0
	for _, r := range reservations {
		held += r.Quantity
	}
	return held, nil
}
