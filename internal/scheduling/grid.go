package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// GenerateGrid возвращает упорядоченные времена начала слотов на дату
// Слот предлагается, только если start + duration <= закрытия;
// последний слот = закрытие - длительность, округлённое вниз до сетки
func GenerateGrid(date time.Time, p domain.BookingPolicy) []time.Time {
	if p.GridMinutes <= 0 || p.DurationMinutes <= 0 {
		return nil
	}

	open := p.OpenTime.On(date, p.Location)
	closeAt := p.CloseTime.On(date, p.Location)
	duration := p.Duration()
	step := p.Grid()

	slots := make([]time.Time, 0, int(closeAt.Sub(open)/step)+1)
	for start := open; !start.Add(duration).After(closeAt); start = start.Add(step) {
		slots = append(slots, start)
	}

	return slots
}

// FloorToGrid округляет момент вниз до ближайшей точки сетки дня
// Сетка отсчитывается от времени открытия
func FloorToGrid(t time.Time, dayOpen time.Time, step time.Duration) time.Time {
	offset := t.Sub(dayOpen)
	steps := offset / step
	if offset < 0 && offset%step != 0 {
		steps--
	}
	return dayOpen.Add(steps * step)
}

// IsOnGrid проверяет, что время начала совпадает с точкой сетки
func IsOnGrid(start time.Time, date time.Time, p domain.BookingPolicy) bool {
	for _, slot := range GenerateGrid(date, p) {
		if slot.Equal(start) {
			return true
		}
	}
	return false
}
