package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	catalogClient "github.com/pawdesk/PCS-BookingService/internal/integrations/catalogservice"
)

// UseCase use case для получения доступности ресурса по слотам
type UseCase struct {
	reservationRepo ReservationRepository
	catalogClient   CatalogServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		catalogClient:   catalogClient,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступности
// Результат - снимок на момент чтения, без блокировок
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: resource=%s, from=%s, to=%s",
		req.ResourceID, req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем ресурс из каталога
	resource, err := uc.catalogClient.GetResource(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrResourceNotFound) {
			uc.logger.Warn("GetAvailability: resource=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// 3. Генерируем сетку слотов
	slots := generateSlots(resource, req.From.UTC(), req.To.UTC(), now)
	if len(slots) == 0 {
		return &Response{
			ResourceID: req.ResourceID,
			From:       req.From,
			To:         req.To,
			Slots:      []Slot{},
		}, nil
	}

	// 4. Загружаем активные резервы одним запросом на весь диапазон
	rangeWindow := domain.TimeWindow{Start: slots[0].Start, End: slots[len(slots)-1].End}
	reservations, err := uc.reservationRepo.GetActiveOverlapping(ctx, req.ResourceID, rangeWindow)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get reservations for resource=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
	}

	// 5. Вычисляем свободную ёмкость по слотам
	result := calculateFreeCapacity(slots, reservations, resource.Capacity)

	uc.logger.Info("GetAvailability: generated %d slots for resource=%s", len(result), req.ResourceID)

	return &Response{
		ResourceID: req.ResourceID,
		From:       req.From,
		To:         req.To,
		Slots:      result,
	}, nil
}
