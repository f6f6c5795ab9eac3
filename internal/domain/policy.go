package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// LeadTimeLoadDate дата, по загрузке которой эскалируется lead time
type LeadTimeLoadDate string

const (
	// LoadDateTomorrow загрузка на завтра относительно момента запроса
	LoadDateTomorrow LeadTimeLoadDate = "tomorrow"
	// LoadDateTargetEve загрузка на день, предшествующий запрошенной дате
	LoadDateTargetEve LeadTimeLoadDate = "target_eve"
)

// IsValid проверяет, что значение известно
func (d LeadTimeLoadDate) IsValid() bool {
	return d == LoadDateTomorrow || d == LoadDateTargetEve
}

// BookingPolicy действующая политика бронирования исполнителя
// Значения из конфигурации, переопределённые ProviderPolicy, если она задана
type BookingPolicy struct {
	Location              *time.Location
	OpenTime              types.TimeOfDay
	CloseTime             types.TimeOfDay
	DurationMinutes       int
	GridMinutes           int
	DailyCapacity         int
	ClientCap             int
	LeadTimeThreshold     int
	LeadTimeBaseDays      int
	LeadTimeEscalatedDays int
	LeadTimeLoadDate      LeadTimeLoadDate
}

// Duration длительность записи
func (p BookingPolicy) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// Grid шаг сетки слотов
func (p BookingPolicy) Grid() time.Duration {
	return time.Duration(p.GridMinutes) * time.Minute
}

// DateOf возвращает календарную дату момента в часовом поясе исполнителя
func (p BookingPolicy) DateOf(t time.Time) time.Time {
	return DateOnly(t.In(p.Location))
}

// StartOfDay возвращает полночь указанной даты в часовом поясе исполнителя
func (p BookingPolicy) StartOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.Location)
}

// ForService подставляет длительность услуги, если она задана
func (p BookingPolicy) ForService(s *Service) BookingPolicy {
	if s != nil && s.DurationMinutes > 0 {
		p.DurationMinutes = s.DurationMinutes
	}
	return p
}

// WithOverrides применяет переопределения исполнителя
func (p BookingPolicy) WithOverrides(o *ProviderPolicy) BookingPolicy {
	if o == nil {
		return p
	}
	if o.DailyCapacity != nil {
		p.DailyCapacity = *o.DailyCapacity
	}
	if o.ClientCap != nil {
		p.ClientCap = *o.ClientCap
	}
	if o.LeadTimeThreshold != nil {
		p.LeadTimeThreshold = *o.LeadTimeThreshold
	}
	if o.OpenTime != nil {
		p.OpenTime = *o.OpenTime
	}
	if o.CloseTime != nil {
		p.CloseTime = *o.CloseTime
	}
	return p
}

// ProviderPolicy переопределения политики для конкретного исполнителя
// nil-поле = значение из конфигурации сервиса
type ProviderPolicy struct {
	ProviderID        int64
	DailyCapacity     *int
	ClientCap         *int
	LeadTimeThreshold *int
	OpenTime          *types.TimeOfDay
	CloseTime         *types.TimeOfDay
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
