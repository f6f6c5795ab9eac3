package models

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// GetAppointmentRequest запрос на получение записи
type GetAppointmentRequest struct {
	AppointmentID uuid.UUID
	UserID        int64
	Actor         domain.Actor
}

// GetClientAppointmentsRequest запрос на получение записей клиента
type GetClientAppointmentsRequest struct {
	ClientID        int64   `json:"clientId"`
	Status          *string `json:"status,omitempty"`
	IncludeInactive bool    `json:"includeInactive,omitempty"`
}

// GetProviderAppointmentsRequest запрос на получение записей исполнителя
type GetProviderAppointmentsRequest struct {
	ProviderID      int64      `json:"providerId"`
	From            *time.Time `json:"from,omitempty"` // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`   // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые и завершённые
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderAppointmentsRequest) ToDomainFilter() (domain.AppointmentFilter, error) {
	providerID := r.ProviderID
	filter := domain.AppointmentFilter{
		ProviderID:      &providerID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil {
		from := domain.DateOnly(*r.From)
		filter.DateFrom = &from
	}
	if r.To != nil {
		to := domain.DateOnly(*r.To)
		filter.DateTo = &to
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Statuses = []domain.AppointmentStatus{status}
	}

	return filter, nil
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetClientAppointmentsRequest) ToDomainFilter() (domain.AppointmentFilter, error) {
	clientID := r.ClientID
	filter := domain.AppointmentFilter{
		ClientID:        &clientID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Statuses = []domain.AppointmentStatus{status}
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	AppointmentID   uuid.UUID `json:"appointmentId"`
	ClientID        int64     `json:"clientId"`
	ProviderID      int64     `json:"providerId"`
	ServiceID       int64     `json:"serviceId"`
	BookingDate     string    `json:"bookingDate"` // "2025-10-15"
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	// Денормализованные данные
	ServiceName   string                  `json:"serviceName"`
	LeadTimeClass string                  `json:"leadTimeClass"`
	Customer      *domain.CustomerProfile `json:"customer,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		AppointmentID:      a.Reference,
		ClientID:           a.ClientID,
		ProviderID:         a.ProviderID,
		ServiceID:          a.ServiceID,
		BookingDate:        a.BookingDate.Format(domain.DateFormat),
		StartTime:          a.StartAt,
		DurationMinutes:    a.DurationMinutes,
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		LeadTimeClass:      string(a.LeadTimeClass),
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if !a.Customer.IsEmpty() {
		customer := a.Customer
		resp.Customer = &customer
	}

	if a.CancelledBy != nil {
		actor := string(*a.CancelledBy)
		resp.CancelledBy = &actor
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}

	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
