package cancel_booking

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на отмену записи
type Request struct {
	AppointmentID uuid.UUID
	Actor         domain.Actor
	RequesterID   int64   // ID клиента из заголовка; для actor=client должен совпадать с владельцем
	Reason        *string // Причина отмены (опционально)
}

// Response результат отмены
// not_found и already_cancelled возвращаются в Reason, а не ошибкой
type Response struct {
	Success bool
	Reason  domain.RejectionReason
}
