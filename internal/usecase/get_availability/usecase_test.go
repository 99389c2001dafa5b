package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	catalogClient "github.com/pawdesk/PCS-BookingService/internal/integrations/catalogservice"
)

type fakeReservationRepo struct {
	reservations []*domain.Reservation
}

func (f *fakeReservationRepo) GetActiveOverlapping(_ context.Context, resourceID string, window domain.TimeWindow) ([]*domain.Reservation, error) {
	var result []*domain.Reservation
	for _, r := range f.reservations {
		if r.ResourceID == resourceID && r.IsActive() && r.Window.Overlaps(window) {
			result = append(result, r)
		}
	}
	return result, nil
}

type fakeCatalog struct {
	resources map[string]*domain.Resource
}

func (f *fakeCatalog) GetResource(_ context.Context, resourceID string) (*domain.Resource, error) {
	res, ok := f.resources[resourceID]
	if !ok {
		return nil, catalogClient.ErrResourceNotFound
	}
	return res, nil
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

func newTestUseCase(repo *fakeReservationRepo, now time.Time) *UseCase {
	catalog := &fakeCatalog{resources: map[string]*domain.Resource{
		"groomer-1": {
			ID:              "groomer-1",
			Kind:            domain.KindGroomerSlot,
			Capacity:        1,
			ServiceDuration: time.Hour,
		},
		"hotel-1": {
			ID:       "hotel-1",
			Kind:     domain.KindHotelRoom,
			Capacity: 2,
		},
	}}

	uc := NewUseCase(repo, catalog, nopLogger{})
	uc.timeProvider = &fixedClock{now: now}
	return uc
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("hourly slot grid from service duration", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, now)

		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 4)

		assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), resp.Slots[0].Start)
		assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), resp.Slots[0].End)
		assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), resp.Slots[3].Start)

		for _, slot := range resp.Slots {
			assert.Equal(t, 1, slot.FreeCapacity)
			assert.Equal(t, 1, slot.TotalCapacity)
		}
	})

	t.Run("reserved slot has zero free capacity", func(t *testing.T) {
		repo := &fakeReservationRepo{reservations: []*domain.Reservation{
			{
				ResourceID: "groomer-1",
				Window: domain.TimeWindow{
					Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
					End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
				},
				Quantity: 1,
				Status:   domain.ReservationActive,
			},
		}}
		uc := newTestUseCase(repo, now)

		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 3)

		assert.Equal(t, 1, resp.Slots[0].FreeCapacity)
		assert.Equal(t, 0, resp.Slots[1].FreeCapacity)
		assert.Equal(t, 1, resp.Slots[2].FreeCapacity)
	})

	t.Run("released reservation does not occupy a slot", func(t *testing.T) {
		repo := &fakeReservationRepo{reservations: []*domain.Reservation{
			{
				ResourceID: "groomer-1",
				Window: domain.TimeWindow{
					Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
					End:   time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
				},
				Quantity: 1,
				Status:   domain.ReservationReleased,
			},
		}}
		uc := newTestUseCase(repo, now)

		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 1)
		assert.Equal(t, 1, resp.Slots[0].FreeCapacity)
	})

	t.Run("day slots for hotel room", func(t *testing.T) {
		repo := &fakeReservationRepo{reservations: []*domain.Reservation{
			{
				ResourceID: "hotel-1",
				Window: domain.TimeWindow{
					Start: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
					End:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
				},
				Quantity: 1,
				Status:   domain.ReservationActive,
			},
		}}
		uc := newTestUseCase(repo, now)

		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "hotel-1",
			From:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 4)

		// Дни 3 и 4 марта заняты одним из двух мест
		assert.Equal(t, 2, resp.Slots[0].FreeCapacity)
		assert.Equal(t, 1, resp.Slots[1].FreeCapacity)
		assert.Equal(t, 1, resp.Slots[2].FreeCapacity)
		assert.Equal(t, 2, resp.Slots[3].FreeCapacity)
	})

	t.Run("past slots excluded", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, now)

		// Диапазон начинается до текущего момента
		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, resp.Slots, 3)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), resp.Slots[0].Start)
	})

	t.Run("entirely past range yields empty slots", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, now)

		resp, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
			To:         time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Slots)
	})

	t.Run("unknown resource", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, now)

		_, err := uc.Execute(ctx, &Request{
			ResourceID: "no-such-resource",
			From:       now,
			To:         now.AddDate(0, 0, 1),
		})
		assert.ErrorIs(t, err, ErrResourceNotFound)
	})

	t.Run("range validation", func(t *testing.T) {
		uc := newTestUseCase(&fakeReservationRepo{}, now)

		_, err := uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       now.AddDate(0, 0, 1),
			To:         now,
		})
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = uc.Execute(ctx, &Request{
			ResourceID: "groomer-1",
			From:       now,
			To:         now.AddDate(0, 0, maxRangeDays+1),
		})
		assert.ErrorIs(t, err, ErrInvalidRange)

		_, err = uc.Execute(ctx, &Request{
			ResourceID: "",
			From:       now,
			To:         now.AddDate(0, 0, 1),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
