package get_available_slots

import (
	"context"
	"iter"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// AvailableSlots возвращает ленивую последовательность свободных слотов корта на дату.
//
// Занятые интервалы запрашиваются один раз, до создания последовательности;
// саму последовательность можно обходить повторно, каждый обход заново
// строит сетку от времени открытия.
func AvailableSlots(
	ctx context.Context,
	clock Clock,
	date string,
	hours domain.BusinessHours,
	lookup BookingLookup,
) (iter.Seq[types.TimeString], error) {
	dayStart, dayEnd, err := clock.DayBounds(date)
	if err != nil {
		return nil, err
	}

	busy, err := lookup(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// Для сегодняшней даты отсекаем слоты раньше "сейчас, округлённого вверх до получаса"
	minHour := -1
	if date == clock.Today() {
		now := clock.Now()
		minHour = now.Hour()
		if now.Minute() >= 30 {
			minHour++
		}
	}

	slotLength := time.Duration(hours.SlotMinutes) * time.Minute

	return func(yield func(types.TimeString) bool) {
		for slot := range grid(hours) {
			if slot.Hour() < minHour {
				continue
			}

			start, err := clock.ToInstant(date, slot)
			if err != nil {
				return
			}
			candidate := domain.Interval{Start: start, End: start.Add(slotLength)}
			if overlapsAny(candidate, busy) {
				continue
			}

			if !yield(slot) {
				return
			}
		}
	}, nil
}

// grid генерирует начала слотов от открытия с шагом SlotMinutes.
// Слот включается, только если он заканчивается не позже закрытия.
func grid(hours domain.BusinessHours) iter.Seq[types.TimeString] {
	return func(yield func(types.TimeString) bool) {
		if hours.SlotMinutes <= 0 {
			return
		}

		current := hours.Open
		for current.IsBefore(hours.Close) {
			slotEnd, err := current.AddMinutes(hours.SlotMinutes)
			if err != nil || slotEnd.IsAfter(hours.Close) {
				return
			}
			if !yield(current) {
				return
			}
			current = slotEnd
		}
	}
}

// overlapsAny проверяет пересечение слота с занятыми интервалами.
// Интервалы полуоткрытые: бронирование, заканчивающееся ровно в начале слота, его не занимает.
func overlapsAny(slot domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

// bookingIntervals оставляет от бронирований только активные интервалы
func bookingIntervals(bookings []*domain.Booking) []domain.Interval {
	result := make([]domain.Interval, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		result = append(result, b.Interval())
	}
	return result
}
