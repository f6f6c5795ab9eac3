package update_provider_policy

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig/models"
)

type PolicyService interface {
	Update(ctx context.Context, providerID int64, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
