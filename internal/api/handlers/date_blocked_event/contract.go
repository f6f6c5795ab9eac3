package date_blocked_event

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/events"
)

type BlockedDateChecker interface {
	IsBlocked(ctx context.Context, providerID int64, date time.Time) (bool, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, e events.Event)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
