package cancel_booking

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	cancelBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(id uuid.UUID, actor domain.Actor, userID int64) *cancelBooking.Request {
	return &cancelBooking.Request{
		AppointmentID: id,
		Actor:         actor,
		RequesterID:   userID,
		Reason:        r.CancellationReason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP статус и тело
func FromUseCaseResponse(resp *cancelBooking.Response) (int, *CancelBookingResponse) {
	body := &CancelBookingResponse{Success: resp.Success, Reason: string(resp.Reason)}

	switch resp.Reason {
	case domain.ReasonNotFound:
		return http.StatusNotFound, body
	case domain.ReasonAlreadyCancelled:
		return http.StatusConflict, body
	}
	return http.StatusOK, body
}
