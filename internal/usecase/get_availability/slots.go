package get_availability

import (
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

// Шаг по умолчанию для ресурсов без объявленной длительности услуги
const defaultSlotStep = time.Hour

// generateSlots генерирует сетку слотов ресурса в диапазоне [from, to)
// Для суточных ресурсов слот - это календарный день, для остальных сетка
// строится с шагом длительности услуги. Слоты, начавшиеся в прошлом,
// не включаются
func generateSlots(resource *domain.Resource, from, to, now time.Time) []domain.TimeWindow {
	if resource.Kind.Granularity() == domain.GranularityDay {
		return generateDaySlots(from, to, now)
	}

	step := resource.ServiceDuration
	if step <= 0 {
		step = defaultSlotStep
	}

	slots := make([]domain.TimeWindow, 0)
	for start := from; !start.Add(step).After(to); start = start.Add(step) {
		if start.Before(now) {
			continue
		}
		slots = append(slots, domain.TimeWindow{Start: start, End: start.Add(step)})
	}

	return slots
}

// generateDaySlots генерирует по одному слоту на каждый календарный день
func generateDaySlots(from, to, now time.Time) []domain.TimeWindow {
	today := truncateToDay(now)

	slots := make([]domain.TimeWindow, 0)
	for day := truncateToDay(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		if day.Before(today) {
			continue
		}
		slots = append(slots, domain.TimeWindow{Start: day, End: day.AddDate(0, 0, 1)})
	}

	return slots
}

// calculateFreeCapacity вычисляет свободную ёмкость для каждого слота
// Резервы загружаются один раз на весь диапазон, пересечение считается
// по полуоткрытым интервалам
func calculateFreeCapacity(slots []domain.TimeWindow, reservations []*domain.Reservation, capacity int) []Slot {
	result := make([]Slot, len(slots))

	for i, window := range slots {
		held := 0
		for _, r := range reservations {
			if r.IsActive() && window.Overlaps(r.Window) {
				held += r.Quantity
			}
		}

		free := capacity - held
		if free < 0 {
			free = 0
		}

		result[i] = Slot{
			Start:         window.Start,
			End:           window.End,
			FreeCapacity:  free,
			TotalCapacity: capacity,
		}
	}

	return result
}

// truncateToDay обнуляет время, оставляя только дату (UTC)
func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
