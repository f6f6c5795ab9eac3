package attempt_booking

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	attemptBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/attempt_booking"
)

// AttemptBookingRequest HTTP request model
type AttemptBookingRequest struct {
	ProviderID int64                  `json:"providerId"`
	ServiceID  int64                  `json:"serviceId"`
	StartTime  time.Time              `json:"startTime"` // RFC3339
	Customer   domain.CustomerProfile `json:"customer"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	Success          bool       `json:"success"`
	Reason           string     `json:"reason,omitempty"`
	RequiredLeadDays int        `json:"requiredLeadDays,omitempty"`
	AppointmentID    *uuid.UUID `json:"appointmentId,omitempty"`
	ProviderID       int64      `json:"providerId,omitempty"`
	ServiceID        int64      `json:"serviceId,omitempty"`
	ServiceName      string     `json:"serviceName,omitempty"`
	BookingDate      string     `json:"bookingDate,omitempty"`
	StartTime        *time.Time `json:"startTime,omitempty"`
	DurationMinutes  int        `json:"durationMinutes,omitempty"`
	Status           string     `json:"status,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AttemptBookingRequest) ToUseCaseRequest(clientID int64) *attemptBooking.Request {
	return &attemptBooking.Request{
		ClientID:   clientID,
		ProviderID: r.ProviderID,
		ServiceID:  r.ServiceID,
		StartAt:    r.StartTime,
		Customer:   r.Customer,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *attemptBooking.Response) *BookingResponse {
	if !resp.Success {
		return &BookingResponse{
			Reason:           string(resp.Reason),
			RequiredLeadDays: resp.RequiredLeadDays,
		}
	}

	id := resp.AppointmentID
	start := resp.StartAt
	created := resp.CreatedAt
	return &BookingResponse{
		Success:          true,
		RequiredLeadDays: resp.RequiredLeadDays,
		AppointmentID:    &id,
		ProviderID:       resp.ProviderID,
		ServiceID:        resp.ServiceID,
		ServiceName:      resp.ServiceName,
		BookingDate:      resp.BookingDate.Format(domain.DateFormat),
		StartTime:        &start,
		DurationMinutes:  resp.DurationMinutes,
		Status:           string(resp.Status),
		CreatedAt:        &created,
	}
}

// rejectionStatus HTTP статус для бизнес-отказа
func rejectionStatus(reason domain.RejectionReason) int {
	if reason == domain.ReasonLeadTimeViolation {
		return http.StatusUnprocessableEntity
	}
	return http.StatusConflict
}
