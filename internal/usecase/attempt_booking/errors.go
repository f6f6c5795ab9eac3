package attempt_booking

import (
	"errors"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или не активна
	ErrServiceNotFound = errors.New("attempt_booking: service not found")

	// ErrInvalidTimeSlot возвращается, когда время начала не совпадает с сеткой рабочего дня
	ErrInvalidTimeSlot = errors.New("attempt_booking: invalid time slot")

	// ErrDateTooFarInFuture возвращается, когда дата дальше горизонта записи
	ErrDateTooFarInFuture = errors.New("attempt_booking: date is too far in the future")

	// ErrInvalidCustomer возвращается при некорректной анкете клиента
	ErrInvalidCustomer = errors.New("attempt_booking: invalid customer profile")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("attempt_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("attempt_booking: internal error")
)

// rejection бизнес-отказ, прерывающий транзакцию фиксации
type rejection struct {
	reason domain.RejectionReason
}

func (r *rejection) Error() string {
	return "attempt_booking: rejected: " + string(r.reason)
}
