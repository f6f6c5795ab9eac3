package update_booking_status

import (
	"context"

	"github.com/google/uuid"
)

type BookingService interface {
	Confirm(ctx context.Context, ref uuid.UUID) error
	Complete(ctx context.Context, ref uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
