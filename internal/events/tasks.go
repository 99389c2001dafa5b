package events

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// Типы входящих задач от смежных сервисов
const (
	// TypeUserDeleted клиент удалил аккаунт, его бронирования анонимизируются
	TypeUserDeleted = "user.deleted"

	// TypePaymentProcessed платёж по бронированию прошёл
	TypePaymentProcessed = "payment.processed"

	// TypePaymentFailed платёж по бронированию не прошёл
	TypePaymentFailed = "payment.failed"
)

// UserDeletedPayload payload события удаления пользователя
type UserDeletedPayload struct {
	UserID int64 `json:"userId"`
}

// PaymentPayload payload события об исходе платежа
type PaymentPayload struct {
	BookingID string `json:"bookingId"` // внешний reference бронирования
	Detail    string `json:"detail,omitempty"`
}

// NewBookingEventTask упаковывает доменное событие в задачу очереди
// Тип задачи совпадает с kind события (booking.created и т.д.)
func NewBookingEventTask(event domain.BookingEvent) (*asynq.Task, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}
	return asynq.NewTask(event.Kind, b), nil
}
