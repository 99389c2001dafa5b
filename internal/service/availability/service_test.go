package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	reservationRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/reservation"
	"github.com/pawdesk/PCS-BookingService/pkg/txmanager"
)

// fakeReservationRepo резервы в памяти, для тестов сервиса ёмкости
type fakeReservationRepo struct {
	nextID       int64
	reservations map[int64]*domain.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		nextID:       1,
		reservations: make(map[int64]*domain.Reservation),
	}
}

func (f *fakeReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	stored := *res
	stored.ID = f.nextID
	f.nextID++
	f.reservations[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	res, ok := f.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	out := *res
	return &out, nil
}

func (f *fakeReservationRepo) GetActiveByBookingRef(_ context.Context, bookingRef string) (*domain.Reservation, error) {
	for _, res := range f.reservations {
		if res.BookingRef == bookingRef && res.Status == domain.ReservationActive {
			out := *res
			return &out, nil
		}
	}
	return nil, reservationRepo.ErrReservationNotFound
}

func (f *fakeReservationRepo) GetActiveOverlapping(_ context.Context, resourceID string, window domain.TimeWindow) ([]*domain.Reservation, error) {
	var result []*domain.Reservation
	for _, res := range f.reservations {
		if res.ResourceID == resourceID && res.Status == domain.ReservationActive && res.Window.Overlaps(window) {
			out := *res
			result = append(result, &out)
		}
	}
	return result, nil
}

func (f *fakeReservationRepo) Release(_ context.Context, id int64) (bool, error) {
	res, ok := f.reservations[id]
	if !ok {
		return false, reservationRepo.ErrReservationNotFound
	}
	if res.Status != domain.ReservationActive {
		return false, nil
	}
	res.Status = domain.ReservationReleased
	return true, nil
}

func (f *fakeReservationRepo) snapshot() map[int64]*domain.Reservation {
	copied := make(map[int64]*domain.Reservation, len(f.reservations))
	for id, res := range f.reservations {
		out := *res
		copied[id] = &out
	}
	return copied
}

// fakeTxManager имитирует откат: при ошибке fn состояние репозитория
// восстанавливается из снимка
type fakeTxManager struct {
	repo *fakeReservationRepo
	err  error // если задана, транзакция падает сразу
}

func (f *fakeTxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	before := f.repo.snapshot()
	beforeID := f.repo.nextID
	if err := fn(ctx); err != nil {
		f.repo.reservations = before
		f.repo.nextID = beforeID
		return err
	}
	return nil
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.run(ctx, fn)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.run(ctx, fn)
}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.run(ctx, fn)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService() (*Service, *fakeReservationRepo) {
	repo := newFakeReservationRepo()
	return NewService(repo, &fakeTxManager{repo: repo}, nopLogger{}), repo
}

func window(startHour, endHour int) domain.TimeWindow {
	return domain.TimeWindow{
		Start: time.Date(2026, 3, 10, startHour, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 10, endHour, 0, 0, 0, time.UTC),
	}
}

func groomerSlot(capacity int) *domain.Resource {
	return &domain.Resource{
		ID:       "groomer-1",
		Kind:     domain.KindGroomerSlot,
		Capacity: capacity,
	}
}

func TestCheckAndReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves free window", func(t *testing.T) {
		svc, _ := newTestService()

		res, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationActive, res.Status)
		assert.Equal(t, "ref-1", res.BookingRef)
	})

	t.Run("capacity one conflict reports overlap", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		_, err = svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-2")
		assert.ErrorIs(t, err, ErrOverlap)

		// Отклонённая попытка ничего не записала
		active, err := repo.GetActiveOverlapping(ctx, "groomer-1", window(10, 11))
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("back-to-back windows do not conflict", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		_, err = svc.CheckAndReserve(ctx, groomerSlot(1), window(11, 12), 1, "ref-2")
		assert.NoError(t, err)
	})

	t.Run("capacity greater than one sums held quantity", func(t *testing.T) {
		svc, _ := newTestService()
		room := &domain.Resource{ID: "room-1", Kind: domain.KindServiceSlot, Capacity: 3}

		_, err := svc.CheckAndReserve(ctx, room, window(10, 12), 2, "ref-1")
		require.NoError(t, err)

		_, err = svc.CheckAndReserve(ctx, room, window(11, 13), 2, "ref-2")
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		_, err = svc.CheckAndReserve(ctx, room, window(11, 13), 1, "ref-3")
		assert.NoError(t, err)
	})

	t.Run("hotel room window normalized to whole days", func(t *testing.T) {
		svc, _ := newTestService()
		room := &domain.Resource{ID: "hotel-1", Kind: domain.KindHotelRoom, Capacity: 1}

		checkIn := domain.TimeWindow{
			Start: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 12, 11, 0, 0, 0, time.UTC),
		}
		res, err := svc.CheckAndReserve(ctx, room, checkIn, 1, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), res.Window.Start)
		assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), res.Window.End)

		// Другое время заезда в те же дни конфликтует после нормализации
		other := domain.TimeWindow{
			Start: time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC),
		}
		_, err = svc.CheckAndReserve(ctx, room, other, 1, "ref-2")
		assert.ErrorIs(t, err, ErrOverlap)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 0, "ref-1")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("invalid window", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CheckAndReserve(ctx, groomerSlot(1), domain.TimeWindow{
			Start: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		}, 1, "ref-1")
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("serialization failure maps to unavailable", func(t *testing.T) {
		repo := newFakeReservationRepo()
		svc := NewService(repo, &fakeTxManager{repo: repo, err: txmanager.ErrSerializationFailure}, nopLogger{})

		_, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("release frees capacity", func(t *testing.T) {
		svc, _ := newTestService()

		res, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		require.NoError(t, svc.Release(ctx, res.ID))

		_, err = svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-2")
		assert.NoError(t, err)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		svc, _ := newTestService()

		res, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		require.NoError(t, svc.Release(ctx, res.ID))
		assert.NoError(t, svc.Release(ctx, res.ID))
	})

	t.Run("release of unknown reservation", func(t *testing.T) {
		svc, _ := newTestService()

		err := svc.Release(ctx, 404)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("release by booking without active reservation is a no-op", func(t *testing.T) {
		svc, _ := newTestService()

		assert.NoError(t, svc.ReleaseByBooking(ctx, "unknown-ref"))
	})

	t.Run("release by booking frees the active reservation", func(t *testing.T) {
		svc, repo := newTestService()

		res, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		require.NoError(t, svc.ReleaseByBooking(ctx, "ref-1"))

		stored, err := repo.GetByID(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationReleased, stored.Status)
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("moves reservation to a free window", func(t *testing.T) {
		svc, repo := newTestService()

		old, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)

		moved, err := svc.Move(ctx, old.ID, groomerSlot(1), window(14, 15), 1)
		require.NoError(t, err)
		assert.Equal(t, "ref-1", moved.BookingRef)
		assert.Equal(t, window(14, 15), moved.Window)

		stored, err := repo.GetByID(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationReleased, stored.Status)
	})

	t.Run("rejected move keeps old reservation active", func(t *testing.T) {
		svc, repo := newTestService()

		old, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)
		_, err = svc.CheckAndReserve(ctx, groomerSlot(1), window(14, 15), 1, "ref-2")
		require.NoError(t, err)

		_, err = svc.Move(ctx, old.ID, groomerSlot(1), window(14, 15), 1)
		assert.ErrorIs(t, err, ErrOverlap)

		stored, err := repo.GetByID(ctx, old.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationActive, stored.Status)
	})

	t.Run("move to an adjacent window of the same reservation", func(t *testing.T) {
		// Освобождённый в транзакции старый резерв не учитывается
		// при проверке нового окна, пересекающегося со старым
		svc, _ := newTestService()

		old, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 12), 1, "ref-1")
		require.NoError(t, err)

		moved, err := svc.Move(ctx, old.ID, groomerSlot(1), window(11, 13), 1)
		require.NoError(t, err)
		assert.Equal(t, window(11, 13), moved.Window)
	})

	t.Run("move of released reservation", func(t *testing.T) {
		svc, _ := newTestService()

		old, err := svc.CheckAndReserve(ctx, groomerSlot(1), window(10, 11), 1, "ref-1")
		require.NoError(t, err)
		require.NoError(t, svc.Release(ctx, old.ID))

		_, err = svc.Move(ctx, old.ID, groomerSlot(1), window(14, 15), 1)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestQueryFreeCapacity(t *testing.T) {
	ctx := context.Background()

	t.Run("counts only overlapping active reservations", func(t *testing.T) {
		svc, _ := newTestService()
		room := &domain.Resource{ID: "room-1", Kind: domain.KindServiceSlot, Capacity: 3}

		_, err := svc.CheckAndReserve(ctx, room, window(10, 12), 2, "ref-1")
		require.NoError(t, err)
		_, err = svc.CheckAndReserve(ctx, room, window(14, 16), 1, "ref-2")
		require.NoError(t, err)

		free, err := svc.QueryFreeCapacity(ctx, room, window(10, 11))
		require.NoError(t, err)
		assert.Equal(t, 1, free)

		free, err = svc.QueryFreeCapacity(ctx, room, window(12, 14))
		require.NoError(t, err)
		assert.Equal(t, 3, free)
	})

	t.Run("free capacity floors at zero", func(t *testing.T) {
		svc, repo := newTestService()
		slot := groomerSlot(1)

		// Два активных резерва поверх ёмкости 1 могут появиться только
		// в обход сервиса, но отрицательная ёмкость наружу не отдаётся
		_, err := repo.Create(ctx, &domain.Reservation{
			ResourceID: slot.ID, Window: window(10, 11), Quantity: 1,
			BookingRef: "ref-1", Status: domain.ReservationActive,
		})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &domain.Reservation{
			ResourceID: slot.ID, Window: window(10, 11), Quantity: 1,
			BookingRef: "ref-2", Status: domain.ReservationActive,
		})
		require.NoError(t, err)

		free, err := svc.QueryFreeCapacity(ctx, slot, window(10, 11))
		require.NoError(t, err)
		assert.Equal(t, 0, free)
	})
}
