package policy

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentReader чтение записей, нужное для проверки правил
type AppointmentReader interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	Count(ctx context.Context, filter domain.AppointmentFilter) (int, error)
}

// BlockedDateChecker источник заблокированных дат
type BlockedDateChecker interface {
	IsBlocked(ctx context.Context, providerID int64, date time.Time) (bool, error)
}
