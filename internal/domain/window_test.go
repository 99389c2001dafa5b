package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWindow(t *testing.T, start, end string) TimeWindow {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)
	w, err := NewTimeWindow(s, e)
	require.NoError(t, err)
	return w
}

func TestNewTimeWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	w, err := NewTimeWindow(start, end)
	require.NoError(t, err)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, end, w.End)

	_, err = NewTimeWindow(end, start)
	assert.ErrorIs(t, err, ErrWindowInvalid)

	_, err = NewTimeWindow(start, start)
	assert.ErrorIs(t, err, ErrWindowInvalid)

	_, err = NewTimeWindow(time.Time{}, end)
	assert.ErrorIs(t, err, ErrWindowInvalid)
}

func TestNewTimeWindowNormalizesToUTC(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	start := time.Date(2026, 3, 10, 13, 0, 0, 0, msk)
	end := time.Date(2026, 3, 10, 14, 0, 0, 0, msk)

	w, err := NewTimeWindow(start, end)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.Equal(t, 10, w.Start.Hour())
}

func TestOverlaps(t *testing.T) {
	base := mustWindow(t, "2026-03-10T10:00:00Z", "2026-03-10T11:00:00Z")

	tests := []struct {
		name     string
		other    TimeWindow
		overlaps bool
	}{
		{"identical", mustWindow(t, "2026-03-10T10:00:00Z", "2026-03-10T11:00:00Z"), true},
		{"partial overlap at end", mustWindow(t, "2026-03-10T10:30:00Z", "2026-03-10T11:30:00Z"), true},
		{"partial overlap at start", mustWindow(t, "2026-03-10T09:30:00Z", "2026-03-10T10:30:00Z"), true},
		{"contained", mustWindow(t, "2026-03-10T10:15:00Z", "2026-03-10T10:45:00Z"), true},
		{"containing", mustWindow(t, "2026-03-10T09:00:00Z", "2026-03-10T12:00:00Z"), true},
		{"back-to-back after", mustWindow(t, "2026-03-10T11:00:00Z", "2026-03-10T12:00:00Z"), false},
		{"back-to-back before", mustWindow(t, "2026-03-10T09:00:00Z", "2026-03-10T10:00:00Z"), false},
		{"disjoint", mustWindow(t, "2026-03-11T10:00:00Z", "2026-03-11T11:00:00Z"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, base.Overlaps(tt.other))
			assert.Equal(t, tt.overlaps, tt.other.Overlaps(base))
		})
	}
}

func TestContains(t *testing.T) {
	w := mustWindow(t, "2026-03-10T10:00:00Z", "2026-03-10T11:00:00Z")

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.Start.Add(30*time.Minute)))
	// Конец полуинтервала не входит в окно
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestNormalizeDayGranularity(t *testing.T) {
	t.Run("mid-day window widens to whole days", func(t *testing.T) {
		w := mustWindow(t, "2026-03-10T14:00:00Z", "2026-03-12T11:00:00Z")
		n := w.Normalize(GranularityDay)

		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), n.Start)
		assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), n.End)
	})

	t.Run("one night stay occupies one day slot", func(t *testing.T) {
		w := mustWindow(t, "2026-03-10T14:00:00Z", "2026-03-11T00:00:00Z")
		n := w.Normalize(GranularityDay)

		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), n.Start)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), n.End)
		assert.Equal(t, 1, w.Nights())
	})

	t.Run("same-day window still spans one day", func(t *testing.T) {
		w := mustWindow(t, "2026-03-10T09:00:00Z", "2026-03-10T17:00:00Z")
		n := w.Normalize(GranularityDay)

		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), n.Start)
		assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), n.End)
	})

	t.Run("instant granularity unchanged", func(t *testing.T) {
		w := mustWindow(t, "2026-03-10T09:30:00Z", "2026-03-10T10:15:00Z")
		assert.Equal(t, w, w.Normalize(GranularityInstant))
	})
}

func TestNights(t *testing.T) {
	w := mustWindow(t, "2026-03-10T14:00:00Z", "2026-03-13T11:00:00Z")
	assert.Equal(t, 4, w.Nights())

	aligned := mustWindow(t, "2026-03-10T00:00:00Z", "2026-03-13T00:00:00Z")
	assert.Equal(t, 3, aligned.Nights())
}

func TestResourceKindDefaults(t *testing.T) {
	assert.Equal(t, GranularityDay, KindHotelRoom.Granularity())
	assert.Equal(t, GranularityInstant, KindServiceSlot.Granularity())
	assert.Equal(t, GranularityInstant, KindGroomerSlot.Granularity())

	assert.Equal(t, StatusConfirmed, KindHotelRoom.InitialStatus())
	assert.Equal(t, StatusPending, KindServiceSlot.InitialStatus())
	assert.Equal(t, StatusPending, KindGroomerSlot.InitialStatus())

	_, err := ParseResourceKind("parking_spot")
	assert.ErrorIs(t, err, ErrUnknownResourceKind)
}
