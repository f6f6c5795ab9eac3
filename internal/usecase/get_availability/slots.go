package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// buildSlots вычисляет доступность каждой точки сетки
//
// Точка доступна, если одновременно:
//   - у дня осталась вместимость
//   - точка не попала в грубое множество занятых (для UI)
//   - запись с этого времени не пересекается ни с одной активной записью
//   - выполнено минимальное время записи
//
// Пересечение проверяется тем же предикатом, что и при фиксации,
// поэтому доступный слот не может быть отклонён из-за slot_conflict без параллельной записи
func buildSlots(
	date time.Time,
	p domain.BookingPolicy,
	existing []*domain.Appointment,
	remaining int,
	earliest time.Time,
) []domain.SlotAvailability {
	grid := scheduling.GenerateGrid(date, p)
	occupied := scheduling.OccupiedGrid(grid, p.OpenTime.On(date, p.Location), p.Grid(), existing)

	slots := make([]domain.SlotAvailability, len(grid))
	for i, start := range grid {
		slots[i] = domain.SlotAvailability{
			StartAt: start,
			Available: remaining > 0 &&
				!occupied.Contains(start) &&
				scheduling.IsFree(start, p.Duration(), existing) &&
				!start.Before(earliest),
		}
	}

	return slots
}

// unavailableSlots сетка дня без единого доступного слота
func unavailableSlots(date time.Time, p domain.BookingPolicy) []domain.SlotAvailability {
	grid := scheduling.GenerateGrid(date, p)
	slots := make([]domain.SlotAvailability, len(grid))
	for i, start := range grid {
		slots[i] = domain.SlotAvailability{StartAt: start}
	}
	return slots
}
