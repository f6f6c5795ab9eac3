package policy

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Candidate предполагаемая запись для проверки
type Candidate struct {
	ProviderID int64
	ClientID   int64
	Service    *domain.Service
	StartAt    time.Time
	Now        time.Time
	Policy     domain.BookingPolicy
}

// Date календарная дата кандидата в часовом поясе исполнителя
func (c Candidate) Date() time.Time {
	return c.Policy.DateOf(c.StartAt)
}

// Decision результат проверки правил
type Decision struct {
	Admissible       bool
	Reason           domain.RejectionReason
	RequiredLeadDays int
}

func admit(requiredLeadDays int) Decision {
	return Decision{Admissible: true, RequiredLeadDays: requiredLeadDays}
}

func reject(reason domain.RejectionReason) Decision {
	return Decision{Reason: reason}
}
