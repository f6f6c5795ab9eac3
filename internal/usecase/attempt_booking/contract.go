package attempt_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	Count(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	LockScope(ctx context.Context, keys ...string) error
}

// ServiceRepository каталог услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// PolicyResolver действующая политика исполнителя
type PolicyResolver interface {
	Resolve(ctx context.Context, providerID int64) (domain.BookingPolicy, error)
}

// PolicyEngine проверка бизнес-правил записи
type PolicyEngine interface {
	Evaluate(ctx context.Context, c policy.Candidate) (policy.Decision, error)
}

// EventEmitter шина событий доступности
type EventEmitter interface {
	Emit(ctx context.Context, e events.Event)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
