package subscribe_availability

import (
	"context"
	"time"
)

type SubscriberRegistry interface {
	Subscribe(ctx context.Context, providerID int64, date time.Time, clientID int64) error
	Unsubscribe(ctx context.Context, providerID int64, date time.Time, clientID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
