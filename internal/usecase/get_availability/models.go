package get_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса доступности
type Request struct {
	ClientID   int64     // ID клиента (для логирования, не влияет на результат)
	ProviderID int64     // ID исполнителя
	ServiceID  int64     // ID услуги
	Date       time.Time // Дата (без времени)
}

// Response доступность исполнителя на дату
type Response = domain.DayAvailability
