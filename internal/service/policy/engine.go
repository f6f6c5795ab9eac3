package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// Engine проверяет бизнес-правила записи без побочных эффектов
//
// Правила проверяются по порядку, первая же нарушенная причина возвращается:
//  1. дата заблокирована
//  2. вместимость дня исполнителя
//  3. лимит активных будущих записей клиента
//  4. пересечение с активной записью
//  5. минимальное время записи (lead time)
type Engine struct {
	appointments AppointmentReader
	blocked      BlockedDateChecker
}

// NewEngine создает движок правил
func NewEngine(appointments AppointmentReader, blocked BlockedDateChecker) *Engine {
	return &Engine{
		appointments: appointments,
		blocked:      blocked,
	}
}

// Evaluate проверяет кандидата
// Бизнес-отказ возвращается в Decision, ошибка - только при сбое чтения
func (e *Engine) Evaluate(ctx context.Context, c Candidate) (Decision, error) {
	if c.Service == nil || c.Policy.Location == nil {
		return Decision{}, ErrInvalidCandidate
	}

	date := c.Date()

	blocked, err := e.blocked.IsBlocked(ctx, c.ProviderID, date)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: check blocked date: %v", ErrInternal, err)
	}
	if blocked {
		return reject(domain.ReasonBlockedDate), nil
	}

	providerID := c.ProviderID
	dayFilter := domain.AppointmentFilter{ProviderID: &providerID}.ForDate(date)

	activeCount, err := e.appointments.Count(ctx, dayFilter)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: count day appointments: %v", ErrInternal, err)
	}
	if !scheduling.HasCapacity(activeCount, c.Policy.DailyCapacity) {
		return reject(domain.ReasonCapacityExceeded), nil
	}

	clientCount, err := e.ClientActiveCount(ctx, c.ClientID, c.Now)
	if err != nil {
		return Decision{}, err
	}
	if !scheduling.WithinClientCap(clientCount, c.Policy.ClientCap) {
		return reject(domain.ReasonClientCapExceeded), nil
	}

	existing, err := e.appointments.List(ctx, dayFilter)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: list day appointments: %v", ErrInternal, err)
	}
	if !scheduling.IsFree(c.StartAt, c.Policy.Duration(), existing) {
		return reject(domain.ReasonSlotConflict), nil
	}

	requiredDays, err := e.RequiredLeadDays(ctx, c.ProviderID, c.Service.LeadTimeClass, date, c.Now, c.Policy)
	if err != nil {
		return Decision{}, err
	}
	if !scheduling.SatisfiesLeadTime(c.StartAt, c.Now, requiredDays, c.Policy) {
		d := reject(domain.ReasonLeadTimeViolation)
		d.RequiredLeadDays = requiredDays
		return d, nil
	}

	return admit(requiredDays), nil
}

// ClientActiveCount количество активных будущих записей клиента у всех исполнителей
func (e *Engine) ClientActiveCount(ctx context.Context, clientID int64, now time.Time) (int, error) {
	count, err := e.appointments.Count(ctx, domain.AppointmentFilter{
		ClientID:   &clientID,
		StartsFrom: &now,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count client appointments: %v", ErrInternal, err)
	}
	return count, nil
}

// RequiredLeadDays возвращает минимальное число дней до записи для класса услуги
// Для выделенного класса учитывается загрузка этого класса на опорную дату
func (e *Engine) RequiredLeadDays(
	ctx context.Context,
	providerID int64,
	class domain.LeadTimeClass,
	target time.Time,
	now time.Time,
	p domain.BookingPolicy,
) (int, error) {
	if class != domain.LeadTimeNewRegistration {
		return 0, nil
	}

	loadDate := scheduling.LoadReferenceDate(now, target, p)
	filter := domain.AppointmentFilter{
		ProviderID:    &providerID,
		LeadTimeClass: &class,
	}.ForDate(loadDate)

	load, err := e.appointments.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: count lead time class load: %v", ErrInternal, err)
	}

	return scheduling.RequiredLeadDays(class, load, p), nil
}
