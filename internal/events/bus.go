package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type тип события изменения доступности
type Type string

const (
	TypeBookingCreated   Type = "booking_created"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeDateBlocked      Type = "date_blocked"
)

// Event событие, меняющее оставшуюся вместимость даты исполнителя
type Event struct {
	ID             uuid.UUID `json:"eventId"`
	Type           Type      `json:"eventType"`
	ProviderID     int64     `json:"providerId"`
	Date           time.Time `json:"date"`
	AppointmentRef uuid.UUID `json:"appointmentId,omitempty"`
	ClientID       int64     `json:"clientId,omitempty"`
	StartAt        time.Time `json:"startAt,omitempty"`
	ServiceName    string    `json:"serviceName,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Handler обработчик событий внутри процесса (рассылка доступности)
type Handler interface {
	Handle(ctx context.Context, e Event)
}

// Publisher внешняя публикация событий (Kafka)
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Bus доставляет события после фиксации транзакции
// Каждое событие обрабатывается в отдельной горутине, не блокируя ответ клиенту.
// Close дожидается завершения всех начатых обработок
type Bus struct {
	handlers  []Handler
	publisher Publisher
	log       Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewBus создает шину событий; publisher может быть nil
func NewBus(log Logger, publisher Publisher, handlers ...Handler) *Bus {
	return &Bus{
		handlers:  handlers,
		publisher: publisher,
		log:       log,
	}
}

// Emit ставит событие в обработку
// Контекст запроса отвязывается от отмены: рассылка переживает завершение HTTP запроса
func (b *Bus) Emit(ctx context.Context, e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.log.Warn("EventBus: bus is closed, dropping event type=%s provider=%d date=%s",
			e.Type, e.ProviderID, e.Date.Format("2006-01-02"))
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	detached := context.WithoutCancel(ctx)

	go func() {
		defer b.wg.Done()
		b.dispatch(detached, e)
	}()
}

func (b *Bus) dispatch(ctx context.Context, e Event) {
	if b.publisher != nil {
		if err := b.publisher.Publish(ctx, e); err != nil {
			b.log.Error("EventBus: failed to publish event id=%s type=%s: %v", e.ID, e.Type, err)
		}
	}

	for _, h := range b.handlers {
		h.Handle(ctx, e)
	}
}

// Wait дожидается обработки уже принятых событий
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Close перестаёт принимать события и дожидается обработки принятых
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
}
