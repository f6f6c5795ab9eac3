package broadcaster

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentCounter подсчёт активных записей
type AppointmentCounter interface {
	Count(ctx context.Context, filter domain.AppointmentFilter) (int, error)
}

// BlockedDateChecker источник заблокированных дат
type BlockedDateChecker interface {
	IsBlocked(ctx context.Context, providerID int64, date time.Time) (bool, error)
}

// PolicyResolver действующая политика исполнителя
type PolicyResolver interface {
	Resolve(ctx context.Context, providerID int64) (domain.BookingPolicy, error)
}

// SubscriberSource реестр заинтересованных в дате клиентов
type SubscriberSource interface {
	Subscribers(ctx context.Context, providerID int64, date time.Time) ([]int64, error)
}

// Notifier канал уведомлений
type Notifier interface {
	Send(ctx context.Context, recipientID int64, message string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
