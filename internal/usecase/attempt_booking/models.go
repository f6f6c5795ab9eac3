package attempt_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на запись
type Request struct {
	ClientID   int64     // ID клиента (Telegram chat ID)
	ProviderID int64     // ID исполнителя
	ServiceID  int64     // ID услуги
	StartAt    time.Time // Время начала, один из слотов сетки
	Customer   domain.CustomerProfile
}

// Response результат попытки записи
// При отказе Success = false и заполнен Reason, ошибка не возвращается
type Response struct {
	Success          bool
	Reason           domain.RejectionReason
	RequiredLeadDays int // Для lead_time_violation и выделенных услуг

	AppointmentID   uuid.UUID
	ProviderID      int64
	ServiceID       int64
	ServiceName     string
	StartAt         time.Time
	BookingDate     time.Time
	DurationMinutes int
	Status          domain.AppointmentStatus
	CreatedAt       time.Time
}

func rejected(reason domain.RejectionReason, requiredLeadDays int) *Response {
	return &Response{Reason: reason, RequiredLeadDays: requiredLeadDays}
}

func accepted(a *domain.Appointment, requiredLeadDays int) *Response {
	return &Response{
		Success:          true,
		RequiredLeadDays: requiredLeadDays,
		AppointmentID:    a.Reference,
		ProviderID:       a.ProviderID,
		ServiceID:        a.ServiceID,
		ServiceName:      a.ServiceName,
		StartAt:          a.StartAt,
		BookingDate:      a.BookingDate,
		DurationMinutes:  a.DurationMinutes,
		Status:           a.Status,
		CreatedAt:        a.CreatedAt,
	}
}
