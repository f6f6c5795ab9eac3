package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// HasCapacity проверяет, что на дату можно добавить ещё одну запись
func HasCapacity(activeCount, dailyCapacity int) bool {
	return activeCount < dailyCapacity
}

// Remaining возвращает оставшуюся вместимость дня (не меньше нуля)
func Remaining(activeCount, dailyCapacity int) int {
	if activeCount >= dailyCapacity {
		return 0
	}
	return dailyCapacity - activeCount
}

// WithinClientCap проверяет, что у клиента можно создать ещё одну активную запись
func WithinClientCap(clientActiveCount, clientCap int) bool {
	return clientActiveCount < clientCap
}

// LoadReferenceDate возвращает дату, загрузка которой определяет эскалацию lead time
func LoadReferenceDate(now time.Time, target time.Time, p domain.BookingPolicy) time.Time {
	if p.LeadTimeLoadDate == domain.LoadDateTargetEve {
		return domain.DateOnly(target).AddDate(0, 0, -1)
	}
	return p.DateOf(now).AddDate(0, 0, 1)
}

// RequiredLeadDays возвращает минимальное число календарных дней до записи
// Стандартные услуги: 0 (достаточно start >= now).
// Выделенный класс: базовое значение, эскалация при загрузке >= порога
func RequiredLeadDays(class domain.LeadTimeClass, classLoad int, p domain.BookingPolicy) int {
	if class != domain.LeadTimeNewRegistration {
		return 0
	}
	if classLoad >= p.LeadTimeThreshold {
		return p.LeadTimeEscalatedDays
	}
	return p.LeadTimeBaseDays
}

// EarliestStart возвращает самое раннее допустимое время начала записи
func EarliestStart(now time.Time, requiredDays int, p domain.BookingPolicy) time.Time {
	if requiredDays <= 0 {
		return now
	}
	return p.StartOfDay(p.DateOf(now).AddDate(0, 0, requiredDays))
}

// SatisfiesLeadTime проверяет правило минимального времени записи
func SatisfiesLeadTime(start, now time.Time, requiredDays int, p domain.BookingPolicy) bool {
	return !start.Before(EarliestStart(now, requiredDays, p))
}
