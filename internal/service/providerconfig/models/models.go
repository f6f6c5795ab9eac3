package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// UpdatePolicyRequest запрос на замену переопределений политики исполнителя
// Все поля опциональны - nil означает значение из конфигурации сервиса
type UpdatePolicyRequest struct {
	DailyCapacity     *int             `json:"dailyCapacity,omitempty"`
	ClientCap         *int             `json:"clientCap,omitempty"`
	LeadTimeThreshold *int             `json:"leadTimeThreshold,omitempty"`
	OpenTime          *types.TimeOfDay `json:"openTime,omitempty"`
	CloseTime         *types.TimeOfDay `json:"closeTime,omitempty"`
}

// Response модели

// PolicyResponse действующая политика исполнителя и его переопределения
type PolicyResponse struct {
	ProviderID            int64           `json:"providerId"`
	Timezone              string          `json:"timezone"`
	OpenTime              types.TimeOfDay `json:"openTime"`
	CloseTime             types.TimeOfDay `json:"closeTime"`
	DurationMinutes       int             `json:"durationMinutes"`
	GridMinutes           int             `json:"gridMinutes"`
	DailyCapacity         int             `json:"dailyCapacity"`
	ClientCap             int             `json:"clientCap"`
	LeadTimeThreshold     int             `json:"leadTimeThreshold"`
	LeadTimeBaseDays      int             `json:"leadTimeBaseDays"`
	LeadTimeEscalatedDays int             `json:"leadTimeEscalatedDays"`
	Overrides             *Overrides      `json:"overrides,omitempty"`
}

// Overrides сохранённые переопределения исполнителя
type Overrides struct {
	DailyCapacity     *int             `json:"dailyCapacity,omitempty"`
	ClientCap         *int             `json:"clientCap,omitempty"`
	LeadTimeThreshold *int             `json:"leadTimeThreshold,omitempty"`
	OpenTime          *types.TimeOfDay `json:"openTime,omitempty"`
	CloseTime         *types.TimeOfDay `json:"closeTime,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// Методы конвертации

// FromDomainPolicy собирает ответ из действующей политики и переопределений
func FromDomainPolicy(providerID int64, p domain.BookingPolicy, o *domain.ProviderPolicy) *PolicyResponse {
	resp := &PolicyResponse{
		ProviderID:            providerID,
		Timezone:              p.Location.String(),
		OpenTime:              p.OpenTime,
		CloseTime:             p.CloseTime,
		DurationMinutes:       p.DurationMinutes,
		GridMinutes:           p.GridMinutes,
		DailyCapacity:         p.DailyCapacity,
		ClientCap:             p.ClientCap,
		LeadTimeThreshold:     p.LeadTimeThreshold,
		LeadTimeBaseDays:      p.LeadTimeBaseDays,
		LeadTimeEscalatedDays: p.LeadTimeEscalatedDays,
	}

	if o != nil {
		resp.Overrides = &Overrides{
			DailyCapacity:     o.DailyCapacity,
			ClientCap:         o.ClientCap,
			LeadTimeThreshold: o.LeadTimeThreshold,
			OpenTime:          o.OpenTime,
			CloseTime:         o.CloseTime,
			UpdatedAt:         o.UpdatedAt,
		}
	}

	return resp
}

// ToDomainPolicy конвертирует запрос в переопределения исполнителя
func (r *UpdatePolicyRequest) ToDomainPolicy(providerID int64) *domain.ProviderPolicy {
	return &domain.ProviderPolicy{
		ProviderID:        providerID,
		DailyCapacity:     r.DailyCapacity,
		ClientCap:         r.ClientCap,
		LeadTimeThreshold: r.LeadTimeThreshold,
		OpenTime:          r.OpenTime,
		CloseTime:         r.CloseTime,
	}
}
