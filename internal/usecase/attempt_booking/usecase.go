package attempt_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/events"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const outcomeSuccess = "success"

// UseCase use case попытки записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	policies        PolicyResolver
	engine          PolicyEngine
	txManager       TransactionManager
	events          EventEmitter
	metrics         *metrics.Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	policies PolicyResolver,
	engine PolicyEngine,
	txManager TransactionManager,
	events EventEmitter,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		policies:        policies,
		engine:          engine,
		txManager:       txManager,
		events:          events,
		metrics:         m,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет попытку записи
// Сначала правила проверяются без блокировок, затем запись фиксируется в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AttemptBooking: client=%d, provider=%d, service=%d, start=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.StartAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("AttemptBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем услугу и её класс lead time
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("AttemptBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("AttemptBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("AttemptBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Действующая политика исполнителя
	p, err := uc.policies.Resolve(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("AttemptBooking: failed to resolve policy for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to resolve policy: %v", ErrInternal, err)
	}
	p = p.ForService(service)

	// 4. Время начала должно быть слотом сетки
	if err := validateSlot(req.StartAt, now, p); err != nil {
		uc.logger.Warn("AttemptBooking: slot validation failed: %v", err)
		return nil, err
	}

	// 5. Предварительная проверка правил
	decision, err := uc.engine.Evaluate(ctx, policy.Candidate{
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		Service:    service,
		StartAt:    req.StartAt,
		Now:        now,
		Policy:     p,
	})
	if err != nil {
		uc.logger.Error("AttemptBooking: policy evaluation failed: %v", err)
		return nil, fmt.Errorf("%w: policy evaluation failed: %v", ErrInternal, err)
	}
	if !decision.Admissible {
		uc.logger.Warn("AttemptBooking: rejected by policy, client=%d, provider=%d, reason=%s",
			req.ClientID, req.ProviderID, decision.Reason)
		uc.metrics.ObserveBookingAttempt(string(decision.Reason))
		return rejected(decision.Reason, decision.RequiredLeadDays), nil
	}

	// 6. Фиксация в транзакции
	created, reason, err := uc.commit(ctx, req, service, p, now)
	if err != nil {
		uc.logger.Error("AttemptBooking: commit failed, client=%d, provider=%d: %v", req.ClientID, req.ProviderID, err)
		uc.metrics.ObserveBookingAttempt("persistence_failure")
		return nil, err
	}
	if reason != "" {
		uc.logger.Warn("AttemptBooking: rejected at commit, client=%d, provider=%d, reason=%s",
			req.ClientID, req.ProviderID, reason)
		uc.metrics.ObserveBookingAttempt(string(reason))
		return rejected(reason, decision.RequiredLeadDays), nil
	}

	uc.metrics.ObserveBookingAttempt(outcomeSuccess)
	uc.logger.Info("AttemptBooking: successfully created appointment id=%s, client=%d, provider=%d",
		created.Reference, created.ClientID, created.ProviderID)

	// 7. Уведомления уходят после фиксации и не влияют на результат
	uc.events.Emit(ctx, events.Event{
		Type:           events.TypeBookingCreated,
		ProviderID:     created.ProviderID,
		Date:           p.DateOf(created.StartAt),
		AppointmentRef: created.Reference,
		ClientID:       created.ClientID,
		StartAt:        created.StartAt,
		ServiceName:    created.ServiceName,
	})

	return accepted(created, decision.RequiredLeadDays), nil
}
