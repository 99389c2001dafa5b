package domain

import (
	"fmt"
	"time"
)

// TimeWindow is a half-open interval [Start, End) of UTC instants.
// The end instant is excluded, so back-to-back windows do not conflict.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow builds a validated window, normalizing both instants to UTC.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: start.UTC(), End: end.UTC()}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// Validate checks the start < end invariant.
func (w TimeWindow) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
		return ErrWindowInvalid
	}
	return nil
}

// Overlaps reports whether two half-open windows intersect:
// start1 < end2 && start2 < end1. A window ending at 10:00 does not
// conflict with one starting at 10:00.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether the instant t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Normalize adjusts the window to the resource granularity.
// For day-granular resources (hotel stays) the window is widened to whole
// calendar days: [checkIn, checkOut) in days, so a one-night stay occupies
// exactly one day slot. Instant-granular windows are returned unchanged.
func (w TimeWindow) Normalize(g Granularity) TimeWindow {
	if g != GranularityDay {
		return w
	}
	start := truncateToDay(w.Start)
	end := truncateToDay(w.End)
	if end.Before(w.End) {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return TimeWindow{Start: start, End: end}
}

// Nights returns the number of whole days covered by a day-granular window.
func (w TimeWindow) Nights() int {
	n := w.Normalize(GranularityDay)
	return int(n.End.Sub(n.Start).Hours() / 24)
}

// String renders the window for logs and history notes.
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
