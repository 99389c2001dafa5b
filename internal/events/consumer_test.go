package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	bookingsSvc "github.com/pawdesk/PCS-BookingService/internal/service/bookings"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

type fakeBookings struct {
	payments   []*models.PaymentOutcomeRequest
	anonymized []int64
	paymentErr error
}

func (f *fakeBookings) ApplyPaymentOutcome(_ context.Context, req *models.PaymentOutcomeRequest) error {
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.payments = append(f.payments, req)
	return nil
}

func (f *fakeBookings) AnonymizeCustomer(_ context.Context, customerID int64) (int64, error) {
	f.anonymized = append(f.anonymized, customerID)
	return 1, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestWorker(bookings *fakeBookings) *Worker {
	return NewWorker("localhost:6379", "", 0, 1, bookings, nopLogger{})
}

func TestNewBookingEventTask(t *testing.T) {
	event := domain.BookingEvent{
		Kind:        domain.EventBookingCreated,
		BookingRef:  "ref-1",
		ResourceID:  "groomer-1",
		CustomerID:  10,
		Status:      "pending",
		WindowStart: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	task, err := NewBookingEventTask(event)
	require.NoError(t, err)
	assert.Equal(t, domain.EventBookingCreated, task.Type())

	var decoded domain.BookingEvent
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, event, decoded)
}

func TestHandleUserDeleted(t *testing.T) {
	ctx := context.Background()
	bookings := &fakeBookings{}
	w := newTestWorker(bookings)

	payload, err := json.Marshal(UserDeletedPayload{UserID: 42})
	require.NoError(t, err)

	err = w.mux.ProcessTask(ctx, asynq.NewTask(TypeUserDeleted, payload))
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, bookings.anonymized)
}

func TestHandlePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("processed payment", func(t *testing.T) {
		bookings := &fakeBookings{}
		w := newTestWorker(bookings)

		payload, err := json.Marshal(PaymentPayload{BookingID: "ref-1", Detail: "invoice 77"})
		require.NoError(t, err)

		err = w.mux.ProcessTask(ctx, asynq.NewTask(TypePaymentProcessed, payload))
		require.NoError(t, err)

		require.Len(t, bookings.payments, 1)
		assert.Equal(t, "ref-1", bookings.payments[0].BookingRef)
		assert.True(t, bookings.payments[0].Processed)
		assert.Equal(t, "invoice 77", bookings.payments[0].Detail)
	})

	t.Run("failed payment", func(t *testing.T) {
		bookings := &fakeBookings{}
		w := newTestWorker(bookings)

		payload, err := json.Marshal(PaymentPayload{BookingID: "ref-1"})
		require.NoError(t, err)

		err = w.mux.ProcessTask(ctx, asynq.NewTask(TypePaymentFailed, payload))
		require.NoError(t, err)

		require.Len(t, bookings.payments, 1)
		assert.False(t, bookings.payments[0].Processed)
	})

	t.Run("unknown booking is dropped without retry", func(t *testing.T) {
		bookings := &fakeBookings{paymentErr: bookingsSvc.ErrBookingNotFound}
		w := newTestWorker(bookings)

		payload, err := json.Marshal(PaymentPayload{BookingID: "no-such-ref"})
		require.NoError(t, err)

		err = w.mux.ProcessTask(ctx, asynq.NewTask(TypePaymentProcessed, payload))
		assert.NoError(t, err)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		bookings := &fakeBookings{paymentErr: errors.New("db down")}
		w := newTestWorker(bookings)

		payload, err := json.Marshal(PaymentPayload{BookingID: "ref-1"})
		require.NoError(t, err)

		err = w.mux.ProcessTask(ctx, asynq.NewTask(TypePaymentProcessed, payload))
		assert.Error(t, err)
	})

	t.Run("invalid payload", func(t *testing.T) {
		bookings := &fakeBookings{}
		w := newTestWorker(bookings)

		err := w.mux.ProcessTask(ctx, asynq.NewTask(TypePaymentProcessed, []byte("not json")))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}
