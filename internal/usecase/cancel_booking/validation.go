package cancel_booking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointmentId is required", ErrInvalidInput)
	}

	if !req.Actor.IsValid() {
		return fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, req.Actor)
	}

	if req.Actor == domain.ActorClient && req.RequesterID <= 0 {
		return fmt.Errorf("%w: client id is required for actor=client", ErrInvalidInput)
	}

	if req.Reason != nil && len([]rune(*req.Reason)) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}
