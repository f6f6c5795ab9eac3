package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// IsValid проверяет, что статус известен
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Actor инициатор изменения статуса
type Actor string

const (
	ActorClient Actor = "client"
	ActorAdmin  Actor = "admin"
	ActorSystem Actor = "system"
)

// IsValid проверяет, что инициатор известен
func (a Actor) IsValid() bool {
	return a == ActorClient || a == ActorAdmin || a == ActorSystem
}

// Appointment represents one reserved window with a provider
type Appointment struct {
	ID              int64
	Reference       uuid.UUID // Внешний идентификатор, отдаётся клиентам как appointmentId
	ClientID        int64
	ProviderID      int64
	ServiceID       int64
	StartAt         time.Time
	BookingDate     time.Time // Календарная дата в часовом поясе исполнителя
	DurationMinutes int
	Status          AppointmentStatus

	// Denormalized service data
	ServiceName   string
	LeadTimeClass LeadTimeClass

	Customer CustomerProfile

	CancellationReason *string
	CancelledBy        *Actor
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndAt returns the exclusive end of the appointment window
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsActive returns true if the appointment holds capacity
func (a *Appointment) IsActive() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// IsTerminal returns true if the status can never change again
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCancelled || a.Status == StatusCompleted
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.IsActive()
}

// CanBeConfirmed returns true if the appointment is awaiting confirmation
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status == StatusScheduled
}

// CanBeCompleted returns true if the appointment can be marked as completed
func (a *Appointment) CanBeCompleted() bool {
	return a.IsActive()
}

// StatusChange метаданные перехода статуса
type StatusChange struct {
	Reason *string
	Actor  *Actor
	At     time.Time
}

// AppointmentFilter фильтр выборки записей
// Все поля опциональны; без Statuses и IncludeInactive выбираются только активные записи
type AppointmentFilter struct {
	ProviderID      *int64
	ClientID        *int64
	DateFrom        *time.Time // booking_date >= DateFrom
	DateTo          *time.Time // booking_date <= DateTo
	StartsFrom      *time.Time // start_at >= StartsFrom
	LeadTimeClass   *LeadTimeClass
	Statuses        []AppointmentStatus
	IncludeInactive bool
}

// ForDate ограничивает фильтр одной календарной датой
func (f AppointmentFilter) ForDate(date time.Time) AppointmentFilter {
	d := DateOnly(date)
	f.DateFrom = &d
	f.DateTo = &d
	return f
}

// IsSingleDate проверяет, что фильтр ограничен одной датой
func (f AppointmentFilter) IsSingleDate() bool {
	return f.DateFrom != nil && f.DateTo != nil && f.DateFrom.Equal(*f.DateTo)
}

// Matches проверяет запись на соответствие фильтру (используется in-memory хранилищем)
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.ProviderID != nil && a.ProviderID != *f.ProviderID {
		return false
	}
	if f.ClientID != nil && a.ClientID != *f.ClientID {
		return false
	}
	if f.DateFrom != nil && DateOnly(a.BookingDate).Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && DateOnly(a.BookingDate).After(*f.DateTo) {
		return false
	}
	if f.StartsFrom != nil && a.StartAt.Before(*f.StartsFrom) {
		return false
	}
	if f.LeadTimeClass != nil && a.LeadTimeClass != *f.LeadTimeClass {
		return false
	}
	return f.matchesStatus(a.Status)
}

// StatusSet возвращает набор статусов, по которым фильтруется выборка (nil = без ограничения)
func (f AppointmentFilter) StatusSet() []AppointmentStatus {
	if len(f.Statuses) > 0 {
		return f.Statuses
	}
	if f.IncludeInactive {
		return nil
	}
	return ActiveStatuses
}

func (f AppointmentFilter) matchesStatus(status AppointmentStatus) bool {
	set := f.StatusSet()
	if set == nil {
		return true
	}
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// DateOnly отбрасывает время, сохраняя календарную дату в UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
