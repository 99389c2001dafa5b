package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	bookingRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/booking"
	reservationRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/reservation"
	availabilitySvc "github.com/pawdesk/PCS-BookingService/internal/service/availability"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
	history  []*domain.StatusHistoryEntry
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (f *fakeBookingRepo) UpdateWindow(_ context.Context, id int64, window domain.TimeWindow) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Window = window
	return nil
}

func (f *fakeBookingRepo) AppendHistory(_ context.Context, entry *domain.StatusHistoryEntry) (*domain.StatusHistoryEntry, error) {
	stored := *entry
	stored.ID = int64(len(f.history) + 1)
	f.history = append(f.history, &stored)
	out := stored
	return &out, nil
}

type fakeReservationRepo struct {
	reservations map[string]*domain.Reservation // по booking reference
}

func (f *fakeReservationRepo) GetActiveByBookingRef(_ context.Context, bookingRef string) (*domain.Reservation, error) {
	res, ok := f.reservations[bookingRef]
	if !ok || res.Status != domain.ReservationActive {
		return nil, reservationRepo.ErrReservationNotFound
	}
	out := *res
	return &out, nil
}

type fakeAvailability struct {
	moved *domain.Reservation
	err   error
}

func (f *fakeAvailability) Move(_ context.Context, reservationID int64, resource *domain.Resource, newWindow domain.TimeWindow, quantity int) (*domain.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.moved = &domain.Reservation{
		ID:         reservationID + 1,
		ResourceID: resource.ID,
		Window:     newWindow,
		Quantity:   quantity,
		Status:     domain.ReservationActive,
	}
	return f.moved, nil
}

type fakeCatalog struct {
	resource *domain.Resource
}

func (f *fakeCatalog) GetResource(_ context.Context, _ string) (*domain.Resource, error) {
	return f.resource, nil
}

type fakePublisher struct {
	events []domain.BookingEvent
}

func (f *fakePublisher) Publish(_ context.Context, event domain.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

// fakeTxManager откатывает окно и историю при ошибке fn
type fakeTxManager struct {
	repo *fakeBookingRepo
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	windows := make(map[int64]domain.TimeWindow, len(f.repo.bookings))
	for id, b := range f.repo.bookings {
		windows[id] = b.Window
	}
	historyLen := len(f.repo.history)

	if err := fn(ctx); err != nil {
		for id, w := range windows {
			f.repo.bookings[id].Window = w
		}
		f.repo.history = f.repo.history[:historyLen]
		return err
	}
	return nil
}

type fixedClock struct {
	now time.Time
}

func (f *fixedClock) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type testEnv struct {
	uc           *UseCase
	repo         *fakeBookingRepo
	reservations *fakeReservationRepo
	availability *fakeAvailability
	publisher    *fakePublisher
	now          time.Time
	oldWindow    domain.TimeWindow
}

func newTestEnv(status domain.BookingStatus) *testEnv {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldWindow := domain.TimeWindow{
		Start: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}

	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{
		1: {
			ID:         1,
			Reference:  "ref-1",
			ResourceID: "groomer-1",
			CustomerID: 10,
			Window:     oldWindow,
			Status:     status,
		},
	}}
	reservations := &fakeReservationRepo{reservations: map[string]*domain.Reservation{
		"ref-1": {
			ID:         100,
			ResourceID: "groomer-1",
			Window:     oldWindow,
			Quantity:   1,
			BookingRef: "ref-1",
			Status:     domain.ReservationActive,
		},
	}}
	availability := &fakeAvailability{}
	catalog := &fakeCatalog{resource: &domain.Resource{
		ID:              "groomer-1",
		Kind:            domain.KindGroomerSlot,
		Capacity:        1,
		ServiceDuration: time.Hour,
	}}
	publisher := &fakePublisher{}

	uc := NewUseCase(repo, reservations, availability, catalog, publisher, &fakeTxManager{repo: repo}, nopLogger{})
	uc.timeProvider = &fixedClock{now: now}

	return &testEnv{
		uc:           uc,
		repo:         repo,
		reservations: reservations,
		availability: availability,
		publisher:    publisher,
		now:          now,
		oldWindow:    oldWindow,
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("owner moves booking to a new window", func(t *testing.T) {
		env := newTestEnv(domain.StatusConfirmed)
		newStart := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)

		resp, err := env.uc.Execute(ctx, &Request{
			BookingID: 1,
			UserID:    10,
			Role:      domain.ActorRoleCustomer,
			Start:     newStart,
		})
		require.NoError(t, err)

		assert.Equal(t, newStart, resp.Start)
		assert.Equal(t, newStart.Add(time.Hour), resp.End)
		// Статус при переносе не меняется
		assert.Equal(t, "confirmed", resp.Status)

		// Окно бронирования обновлено
		stored := env.repo.bookings[1]
		assert.Equal(t, newStart, stored.Window.Start)

		// Запись в историю при неизменном статусе
		require.Len(t, env.repo.history, 1)
		assert.Equal(t, domain.StatusConfirmed, env.repo.history[0].Status)
		assert.Contains(t, *env.repo.history[0].Note, "rescheduled from")

		require.Len(t, env.publisher.events, 1)
		assert.Equal(t, domain.EventBookingUpdated, env.publisher.events[0].Kind)
	})

	t.Run("rejected move keeps old window", func(t *testing.T) {
		env := newTestEnv(domain.StatusConfirmed)
		env.availability.err = availabilitySvc.ErrOverlap

		_, err := env.uc.Execute(ctx, &Request{
			BookingID: 1,
			UserID:    10,
			Role:      domain.ActorRoleCustomer,
			Start:     time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, ErrOverlap)

		// Бронирование осталось на старом окне, история не пополнилась
		stored := env.repo.bookings[1]
		assert.Equal(t, env.oldWindow, stored.Window)
		assert.Empty(t, env.repo.history)
		assert.Empty(t, env.publisher.events)
	})

	t.Run("stranger cannot reschedule", func(t *testing.T) {
		env := newTestEnv(domain.StatusConfirmed)

		_, err := env.uc.Execute(ctx, &Request{
			BookingID: 1,
			UserID:    2,
			Role:      domain.ActorRoleCustomer,
			Start:     time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("staff may reschedule any booking", func(t *testing.T) {
		env := newTestEnv(domain.StatusPending)

		_, err := env.uc.Execute(ctx, &Request{
			BookingID: 1,
			UserID:    99,
			Role:      domain.ActorRoleStaff,
			Start:     time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		})
		assert.NoError(t, err)
	})

	t.Run("started booking cannot be rescheduled", func(t *testing.T) {
		for _, status := range []domain.BookingStatus{
			domain.StatusInProgress,
			domain.StatusCompleted,
			domain.StatusCancelled,
		} {
			env := newTestEnv(status)

			_, err := env.uc.Execute(ctx, &Request{
				BookingID: 1,
				UserID:    10,
				Role:      domain.ActorRoleCustomer,
				Start:     time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
			})
			assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
		}
	})

	t.Run("new window in the past", func(t *testing.T) {
		env := newTestEnv(domain.StatusConfirmed)

		_, err := env.uc.Execute(ctx, &Request{
			BookingID: 1,
			UserID:    10,
			Role:      domain.ActorRoleCustomer,
			Start:     env.now.Add(-time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("unknown booking", func(t *testing.T) {
		env := newTestEnv(domain.StatusConfirmed)

		_, err := env.uc.Execute(ctx, &Request{
			BookingID: 404,
			UserID:    10,
			Role:      domain.ActorRoleCustomer,
			Start:     time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}
