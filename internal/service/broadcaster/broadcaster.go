package broadcaster

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const (
	statusSent   = "sent"
	statusFailed = "failed"
)

// Config параметры рассылки
type Config struct {
	// AdminChatID чат администратора, получает все уведомления; 0 - не отправлять
	AdminChatID int64
	// SendInterval минимальный интервал между отправками
	SendInterval time.Duration
}

// Broadcaster рассылает уведомления об изменении доступности даты
// Ошибки отправки логируются и пропускаются: запись уже зафиксирована
type Broadcaster struct {
	appointments AppointmentCounter
	blocked      BlockedDateChecker
	policies     PolicyResolver
	subscribers  SubscriberSource
	notifier     Notifier
	limiter      *rate.Limiter
	adminChatID  int64
	metrics      *metrics.Metrics
	logger       Logger
}

// New создает рассыльщика
func New(
	appointments AppointmentCounter,
	blocked BlockedDateChecker,
	policies PolicyResolver,
	subscribers SubscriberSource,
	notifier Notifier,
	cfg Config,
	m *metrics.Metrics,
	logger Logger,
) *Broadcaster {
	limit := rate.Inf
	if cfg.SendInterval > 0 {
		limit = rate.Every(cfg.SendInterval)
	}

	return &Broadcaster{
		appointments: appointments,
		blocked:      blocked,
		policies:     policies,
		subscribers:  subscribers,
		notifier:     notifier,
		limiter:      rate.NewLimiter(limit, 1),
		adminChatID:  cfg.AdminChatID,
		metrics:      m,
		logger:       logger,
	}
}

// Handle обрабатывает событие шины
func (b *Broadcaster) Handle(ctx context.Context, e events.Event) {
	policy, err := b.policies.Resolve(ctx, e.ProviderID)
	if err != nil {
		b.logger.Error("Broadcast: failed to resolve policy for provider=%d: %v", e.ProviderID, err)
		return
	}

	remaining, err := b.remaining(ctx, e.ProviderID, e.Date, policy)
	if err != nil {
		b.logger.Error("Broadcast: failed to compute remaining for provider=%d date=%s: %v",
			e.ProviderID, e.Date.Format(domain.DateFormat), err)
		return
	}

	tier := Tier(e.Type, remaining)
	b.logger.Info("Broadcast: event=%s provider=%d date=%s remaining=%d tier=%s",
		e.Type, e.ProviderID, e.Date.Format(domain.DateFormat), remaining, tier)

	switch e.Type {
	case events.TypeBookingCreated:
		b.send(ctx, e.ClientID, "confirmation", confirmationMessage(e, policy.Location))
	case events.TypeBookingCancelled:
		b.send(ctx, e.ClientID, "cancellation", cancellationMessage(e, policy.Location))
	}

	text := tierMessage(tier, e, remaining)
	for _, recipient := range b.recipients(ctx, e) {
		b.send(ctx, recipient, string(tier), text)
	}
}

// Tier выбирает уровень уведомления по типу события и оставшейся вместимости
func Tier(eventType events.Type, remaining int) domain.NotificationTier {
	switch {
	case remaining == 0:
		return domain.TierFullyBooked
	case eventType == events.TypeBookingCancelled:
		return domain.TierSlotFreed
	case remaining == 1:
		return domain.TierLastSlot
	default:
		return domain.TierSlotTaken
	}
}

func (b *Broadcaster) remaining(ctx context.Context, providerID int64, date time.Time, policy domain.BookingPolicy) (int, error) {
	blocked, err := b.blocked.IsBlocked(ctx, providerID, date)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, nil
	}

	count, err := b.appointments.Count(ctx, domain.AppointmentFilter{ProviderID: &providerID}.ForDate(date))
	if err != nil {
		return 0, err
	}

	return scheduling.Remaining(count, policy.DailyCapacity), nil
}

// recipients подписчики даты и администратор; инициатор события исключается
func (b *Broadcaster) recipients(ctx context.Context, e events.Event) []int64 {
	subscribers, err := b.subscribers.Subscribers(ctx, e.ProviderID, e.Date)
	if err != nil {
		b.logger.Warn("Broadcast: failed to load subscribers for provider=%d date=%s: %v",
			e.ProviderID, e.Date.Format(domain.DateFormat), err)
	}

	seen := map[int64]struct{}{e.ClientID: {}}
	result := make([]int64, 0, len(subscribers)+1)
	for _, id := range append(subscribers, b.adminChatID) {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}

func (b *Broadcaster) send(ctx context.Context, recipient int64, kind, text string) {
	if recipient == 0 {
		return
	}

	if err := b.limiter.Wait(ctx); err != nil {
		b.logger.Warn("Broadcast: rate limiter wait aborted for recipient=%d: %v", recipient, err)
		b.metrics.ObserveNotification(kind, statusFailed)
		return
	}

	if err := b.notifier.Send(ctx, recipient, text); err != nil {
		b.logger.Warn("Broadcast: failed to notify recipient=%d kind=%s: %v", recipient, kind, err)
		b.metrics.ObserveNotification(kind, statusFailed)
		return
	}

	b.metrics.ObserveNotification(kind, statusSent)
}
