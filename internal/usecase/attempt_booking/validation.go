package attempt_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Анкета необязательна, но если передана - должна быть полной
	if !req.Customer.IsEmpty() {
		req.Customer.Normalize()
		if err := req.Customer.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
		}
	}

	return nil
}

// validateSlot проверяет, что время начала - точка сетки рабочего дня в пределах горизонта
func validateSlot(start time.Time, now time.Time, p domain.BookingPolicy) error {
	date := p.DateOf(start)

	if !scheduling.IsOnGrid(start, date, p) {
		return fmt.Errorf("%w: %s is not a slot of %s",
			ErrInvalidTimeSlot, start.In(p.Location).Format(domain.TimeFormat), date.Format(domain.DateFormat))
	}

	horizon := p.DateOf(now).AddDate(0, 0, domain.MaxBookingHorizonDays)
	if date.After(horizon) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, domain.MaxBookingHorizonDays)
	}

	return nil
}
