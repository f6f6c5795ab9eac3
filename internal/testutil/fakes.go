package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/providerpolicy"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Logger логгер, который ничего не пишет
func Logger() *logger.Logger {
	return logger.NewNop()
}

// Policy политика для тестов: UTC, 09:00-20:00, записи по 90 минут с шагом 30
func Policy() domain.BookingPolicy {
	return domain.BookingPolicy{
		Location:              time.UTC,
		OpenTime:              types.MustParseTimeOfDay("09:00"),
		CloseTime:             types.MustParseTimeOfDay("20:00"),
		DurationMinutes:       90,
		GridMinutes:           30,
		DailyCapacity:         5,
		ClientCap:             2,
		LeadTimeThreshold:     5,
		LeadTimeBaseDays:      1,
		LeadTimeEscalatedDays: 2,
		LeadTimeLoadDate:      domain.LoadDateTomorrow,
	}
}

// Clock фиксированное время
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set переводит часы
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// BlockedDates in-memory набор заблокированных дат
type BlockedDates struct {
	mu    sync.Mutex
	dates map[string]struct{}
	Err   error
}

// NewBlockedDates создает пустой набор
func NewBlockedDates() *BlockedDates {
	return &BlockedDates{dates: make(map[string]struct{})}
}

// Block блокирует дату исполнителя
func (b *BlockedDates) Block(providerID int64, date time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dates[blockedKey(providerID, date)] = struct{}{}
}

func (b *BlockedDates) IsBlocked(_ context.Context, providerID int64, date time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return false, b.Err
	}
	_, ok := b.dates[blockedKey(providerID, date)]
	return ok, nil
}

func blockedKey(providerID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", providerID, date.Format(domain.DateFormat))
}

// Services in-memory каталог услуг
type Services struct {
	items map[int64]*domain.Service
}

// NewServices создает каталог из списка услуг
func NewServices(services ...*domain.Service) *Services {
	items := make(map[int64]*domain.Service, len(services))
	for _, s := range services {
		items[s.ID] = s
	}
	return &Services{items: items}
}

func (s *Services) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := s.items[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	c := *svc
	return &c, nil
}

func (s *Services) IsDistinguished(ctx context.Context, id int64) (bool, error) {
	svc, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return svc.IsDistinguished(), nil
}

// Policies in-memory хранилище переопределений политики
type Policies struct {
	mu    sync.Mutex
	items map[int64]*domain.ProviderPolicy
}

// NewPolicies создает пустое хранилище
func NewPolicies() *Policies {
	return &Policies{items: make(map[int64]*domain.ProviderPolicy)}
}

func (p *Policies) Get(_ context.Context, providerID int64) (*domain.ProviderPolicy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.items[providerID]
	if !ok {
		return nil, providerpolicy.ErrPolicyNotFound
	}
	c := *item
	return &c, nil
}

func (p *Policies) Upsert(_ context.Context, policy *domain.ProviderPolicy) (*domain.ProviderPolicy, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := *policy
	c.UpdatedAt = time.Now()
	if existing, ok := p.items[policy.ProviderID]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = c.UpdatedAt
	}
	p.items[policy.ProviderID] = &c
	out := c
	return &out, nil
}

// Subscribers in-memory реестр подписчиков
type Subscribers struct {
	mu    sync.Mutex
	items map[string][]int64
}

// NewSubscribers создает пустой реестр
func NewSubscribers() *Subscribers {
	return &Subscribers{items: make(map[string][]int64)}
}

func (s *Subscribers) Subscribe(_ context.Context, providerID int64, date time.Time, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := blockedKey(providerID, date)
	for _, id := range s.items[key] {
		if id == clientID {
			return nil
		}
	}
	s.items[key] = append(s.items[key], clientID)
	return nil
}

func (s *Subscribers) Unsubscribe(_ context.Context, providerID int64, date time.Time, clientID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := blockedKey(providerID, date)
	ids := s.items[key][:0]
	for _, id := range s.items[key] {
		if id != clientID {
			ids = append(ids, id)
		}
	}
	s.items[key] = ids
	return nil
}

func (s *Subscribers) Subscribers(_ context.Context, providerID int64, date time.Time) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.items[blockedKey(providerID, date)]...), nil
}

// Message отправленное уведомление
type Message struct {
	Recipient int64
	Text      string
}

// ErrNotifierFailed ошибка, которую Notifier возвращает для получателей из Fail
var ErrNotifierFailed = errors.New("notifier: delivery failed")

// Notifier записывает отправленные уведомления
type Notifier struct {
	mu       sync.Mutex
	messages []Message
	Fail     map[int64]bool
}

// NewNotifier создает пустой Notifier
func NewNotifier() *Notifier {
	return &Notifier{Fail: make(map[int64]bool)}
}

func (n *Notifier) Send(_ context.Context, recipientID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail[recipientID] {
		return ErrNotifierFailed
	}
	n.messages = append(n.messages, Message{Recipient: recipientID, Text: message})
	return nil
}

// Messages возвращает копию отправленных сообщений
func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.messages...)
}

// Recipients возвращает получателей в порядке отправки
func (n *Notifier) Recipients() []int64 {
	msgs := n.Messages()
	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.Recipient)
	}
	return ids
}
