package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
)

var (
	// ErrMarshal возвращается при ошибке сериализации события
	ErrMarshal = errors.New("kafka publisher: failed to marshal event")

	// ErrWrite возвращается, когда брокер не принял сообщение
	ErrWrite = errors.New("kafka publisher: failed to write message")
)

// MessageWriter интерфейс kafka.Writer (подменяется в тестах)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher публикует события доступности в Kafka
// Топик: <prefix>.<event type>; ключ сообщения - исполнитель и дата,
// чтобы события одной даты попадали в одну партицию
type Publisher struct {
	writer MessageWriter
	prefix string
}

// NewPublisher создает издателя поверх kafka.Writer
func NewPublisher(brokers []string, topicPrefix string) *Publisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Balancer: &kafka.Hash{},
	})
	return NewPublisherWithWriter(writer, topicPrefix)
}

// NewPublisherWithWriter создает издателя с произвольным writer
func NewPublisherWithWriter(writer MessageWriter, topicPrefix string) *Publisher {
	return &Publisher{writer: writer, prefix: topicPrefix}
}

// Topic возвращает имя топика для типа события
func (p *Publisher) Topic(t events.Type) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

// Publish отправляет событие
func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshal, err)
	}

	msg := kafka.Message{
		Topic: p.Topic(e.Type),
		Key:   []byte(fmt.Sprintf("%d:%s", e.ProviderID, e.Date.Format(domain.DateFormat))),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID.String())},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: topic=%s: %v", ErrWrite, msg.Topic, err)
	}

	return nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
