package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	bookingsSvc "github.com/pawdesk/PCS-BookingService/internal/service/bookings"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

// Worker потребляет события смежных сервисов из очереди
//
// Обработчики идемпотентны: asynq доставляет задачи at-least-once,
// и повторная доставка не должна менять итоговое состояние
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	bookings BookingsService
	log      Logger
}

// NewWorker создает новый экземпляр worker поверх Redis
func NewWorker(redisAddr, redisPassword string, redisDB, concurrency int, bookings BookingsService, log Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		bookings: bookings,
		log:      log,
	}

	w.mux.HandleFunc(TypeUserDeleted, w.handleUserDeleted)
	w.mux.HandleFunc(TypePaymentProcessed, w.handlePayment(true))
	w.mux.HandleFunc(TypePaymentFailed, w.handlePayment(false))

	return w
}

// Start запускает обработку задач
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown останавливает worker, дожидаясь активных задач
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// handleUserDeleted анонимизирует бронирования удалённого пользователя
// Идемпотентна: повторная анонимизация затрагивает 0 строк
func (w *Worker) handleUserDeleted(ctx context.Context, task *asynq.Task) error {
	var payload UserDeletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		w.log.Error("handleUserDeleted: invalid payload: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	affected, err := w.bookings.AnonymizeCustomer(ctx, payload.UserID)
	if err != nil {
		w.log.Error("handleUserDeleted: failed to anonymize customer=%d: %v", payload.UserID, err)
		return err
	}

	w.log.Info("handleUserDeleted: anonymized %d bookings for customer=%d", affected, payload.UserID)
	return nil
}

// handlePayment применяет исход платежа к бронированию
func (w *Worker) handlePayment(processed bool) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload PaymentPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			w.log.Error("handlePayment: invalid payload: %v", err)
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}

		err := w.bookings.ApplyPaymentOutcome(ctx, &models.PaymentOutcomeRequest{
			BookingRef: payload.BookingID,
			Processed:  processed,
			Detail:     payload.Detail,
		})
		if err != nil {
			// Платёж по несуществующему бронированию не ретраим
			if errors.Is(err, bookingsSvc.ErrBookingNotFound) {
				w.log.Warn("handlePayment: booking=%s not found, dropping task", payload.BookingID)
				return nil
			}
			w.log.Error("handlePayment: failed to apply outcome for booking=%s: %v", payload.BookingID, err)
			return err
		}

		w.log.Info("handlePayment: applied outcome processed=%t for booking=%s", processed, payload.BookingID)
		return nil
	}
}
