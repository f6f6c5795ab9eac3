package providerconfig

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// PolicyRepository интерфейс репозитория переопределений политики
type PolicyRepository interface {
	Get(ctx context.Context, providerID int64) (*domain.ProviderPolicy, error)
	Upsert(ctx context.Context, p *domain.ProviderPolicy) (*domain.ProviderPolicy, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
