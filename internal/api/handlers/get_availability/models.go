package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date             string `json:"date"`
	ProviderID       int64  `json:"providerId"`
	ServiceID        int64  `json:"serviceId"`
	Blocked          bool   `json:"blocked"`
	DailyCapacity    int    `json:"dailyCapacity"`
	Remaining        int    `json:"remaining"`
	RequiredLeadDays int    `json:"requiredLeadDays,omitempty"`
	Slots            []Slot `json:"slots"`
}

// Slot модель слота сетки
type Slot struct {
	Time      string    `json:"time"` // "10:30" в часовом поясе исполнителя
	StartTime time.Time `json:"startTime"`
	Available bool      `json:"available"`
}

// ToUseCaseRequest формирует запрос к use case (с парсингом даты)
func ToUseCaseRequest(clientID, providerID, serviceID int64, dateStr string) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailability.Request{
		ClientID:   clientID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]Slot, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = Slot{
			Time:      s.StartAt.Format(domain.TimeFormat),
			StartTime: s.StartAt,
			Available: s.Available,
		}
	}

	return &AvailabilityResponse{
		Date:             resp.Date.Format(domain.DateFormat),
		ProviderID:       resp.ProviderID,
		ServiceID:        resp.ServiceID,
		Blocked:          resp.Blocked,
		DailyCapacity:    resp.DailyCapacity,
		Remaining:        resp.Remaining,
		RequiredLeadDays: resp.RequiredLeadDays,
		Slots:            slots,
	}
}
