package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	catalogClient "github.com/pawdesk/PCS-BookingService/internal/integrations/catalogservice"
	availabilitySvc "github.com/pawdesk/PCS-BookingService/internal/service/availability"
)

// UseCase use case для создания бронирования
//
// Проверка ёмкости и запись бронирования выполняются в одной сериализуемой
// транзакции: либо создаются и резерв, и бронирование, либо ничего
type UseCase struct {
	bookingRepo   BookingRepository
	availability  AvailabilityService
	catalogClient CatalogServiceClient
	publisher     EventPublisher
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availability AvailabilityService,
	catalogClient CatalogServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		availability:  availability,
		catalogClient: catalogClient,
		publisher:     publisher,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, pet=%d, resource=%s, start=%s",
		req.CustomerID, req.PetID, req.ResourceID, req.Start.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем ресурс из каталога
	resource, err := uc.catalogClient.GetResource(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrResourceNotFound) {
			uc.logger.Warn("CreateBooking: resource=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// 4. Определяем окно бронирования
	window, err := uc.resolveWindow(req, resource)
	if err != nil {
		uc.logger.Warn("CreateBooking: window resolution failed: %v", err)
		return nil, err
	}

	// Нормализуем заранее, чтобы бронирование и резерв несли одно окно
	window = window.Normalize(resource.Kind.Granularity())

	// 5. Проверяем, что окно не в прошлом
	if err := validateStart(window.Start, now, resource.Kind.Granularity()); err != nil {
		uc.logger.Warn("CreateBooking: window start %s is in the past", window.Start.Format(time.RFC3339))
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = domain.DefaultReservationQuantity
	}

	price := resource.Price
	if req.Price != nil {
		price = *req.Price
	}

	// 6. Внешний reference генерируем до транзакции: резерв ссылается
	// на бронирование по нему, а не по ещё не существующему ID
	reference := uuid.NewString()

	var result *domain.Booking

	// 7. Резерв ёмкости и запись бронирования в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		_, err := uc.availability.CheckAndReserve(txCtx, resource, window, quantity, reference)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			Reference:  reference,
			ResourceID: resource.ID,
			CustomerID: req.CustomerID,
			PetID:      req.PetID,
			Window:     window,
			Price:      price,
			Status:     resource.Kind.InitialStatus(),
			// Денормализация для истории
			ServiceName:  resource.ServiceName,
			PetName:      req.PetName,
			ContactPhone: req.ContactPhone,
			Notes:        req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, availabilitySvc.ErrOverlap):
			uc.logger.Warn("CreateBooking: window overlaps existing booking on resource=%s", resource.ID)
			return nil, ErrOverlap
		case errors.Is(err, availabilitySvc.ErrCapacityExceeded):
			uc.logger.Warn("CreateBooking: capacity exceeded on resource=%s", resource.ID)
			return nil, ErrCapacityExceeded
		case errors.Is(err, availabilitySvc.ErrUnavailable):
			uc.logger.Warn("CreateBooking: resource=%s temporarily unavailable", resource.ID)
			return nil, ErrUnavailable
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d reference=%s status=%s",
		result.ID, result.Reference, result.Status)

	// 8. Публикуем событие после коммита
	event := domain.NewBookingEvent(domain.EventBookingCreated, result, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish event for booking=%s: %v", result.Reference, err)
	}

	return &Response{
		ID:           result.ID,
		Reference:    result.Reference,
		ResourceID:   result.ResourceID,
		CustomerID:   result.CustomerID,
		PetID:        result.PetID,
		Start:        result.Window.Start,
		End:          result.Window.End,
		Price:        result.Price,
		Status:       string(result.Status),
		ServiceName:  result.ServiceName,
		PetName:      result.PetName,
		ContactPhone: result.ContactPhone,
		Notes:        result.Notes,
		CreatedAt:    result.CreatedAt,
		UpdatedAt:    result.UpdatedAt,
	}, nil
}

// resolveWindow вычисляет окно бронирования
// Если конец окна не указан, он выводится из длительности услуги ресурса
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
