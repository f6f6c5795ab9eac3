package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
}

// ServiceRepository каталог услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// BlockedDateChecker источник заблокированных дат
type BlockedDateChecker interface {
	IsBlocked(ctx context.Context, providerID int64, date time.Time) (bool, error)
}

// PolicyResolver действующая политика исполнителя
type PolicyResolver interface {
	Resolve(ctx context.Context, providerID int64) (domain.BookingPolicy, error)
}

// LeadTimeCalculator расчёт минимального времени записи для класса услуги
type LeadTimeCalculator interface {
	RequiredLeadDays(ctx context.Context, providerID int64, class domain.LeadTimeClass,
		target time.Time, now time.Time, p domain.BookingPolicy) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
