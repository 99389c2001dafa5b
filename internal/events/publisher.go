package events

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

const (
	publishQueue    = "events"
	publishMaxRetry = 5
)

// Publisher публикует доменные события в очередь после коммита
//
// Доставка at-least-once: события самодостаточны (несут итоговый статус),
// поэтому повторная доставка безопасна для идемпотентных потребителей
type Publisher struct {
	client *asynq.Client
	log    Logger
}

// NewPublisher создает новый экземпляр publisher поверх Redis
func NewPublisher(redisAddr, redisPassword string, redisDB int, log Logger) *Publisher {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	return &Publisher{
		client: client,
		log:    log,
	}
}

// Publish ставит событие в очередь
func (p *Publisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	task, err := NewBookingEventTask(event)
	if err != nil {
		return err
	}

	info, err := p.client.EnqueueContext(ctx, task,
		asynq.Queue(publishQueue),
		asynq.MaxRetry(publishMaxRetry),
	)
	if err != nil {
		return fmt.Errorf("%w: %s for booking=%s: %v", ErrPublish, event.Kind, event.BookingRef, err)
	}

	p.log.Info("Publish: enqueued %s for booking=%s, task=%s", event.Kind, event.BookingRef, info.ID)
	return nil
}

// Close закрывает соединение с очередью
func (p *Publisher) Close() error {
	return p.client.Close()
}
