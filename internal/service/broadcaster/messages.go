package broadcaster

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
)

const dateLayout = "02.01.2006"

func tierMessage(tier domain.NotificationTier, e events.Event, remaining int) string {
	date := e.Date.Format(dateLayout)

	switch tier {
	case domain.TierFullyBooked:
		return fmt.Sprintf("На %s свободных мест не осталось.", date)
	case domain.TierLastSlot:
		return fmt.Sprintf("На %s осталось последнее свободное место.", date)
	case domain.TierSlotFreed:
		return fmt.Sprintf("На %s освободилось место. Свободно: %d.", date, remaining)
	default:
		return fmt.Sprintf("На %s занято ещё одно место. Свободно: %d.", date, remaining)
	}
}

func confirmationMessage(e events.Event, loc *time.Location) string {
	return fmt.Sprintf("Запись подтверждена: %s, %s (%s). Номер записи: %s.",
		e.ServiceName, e.StartAt.In(loc).Format(dateLayout+" 15:04"), loc, e.AppointmentRef)
}

func cancellationMessage(e events.Event, loc *time.Location) string {
	return fmt.Sprintf("Запись %s на %s отменена.",
		e.AppointmentRef, e.StartAt.In(loc).Format(dateLayout+" 15:04"))
}
