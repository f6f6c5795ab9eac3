package get_provider_policy

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig/models"
)

type PolicyService interface {
	Get(ctx context.Context, providerID int64) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
