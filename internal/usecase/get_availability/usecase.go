package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case получения доступности исполнителя на дату
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	blocked         BlockedDateChecker
	policies        PolicyResolver
	leadTime        LeadTimeCalculator
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	blocked BlockedDateChecker,
	policies PolicyResolver,
	leadTime LeadTimeCalculator,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		blocked:         blocked,
		policies:        policies,
		leadTime:        leadTime,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступности
// Без побочных эффектов; записи читаются одним согласованным снимком
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: client=%d, provider=%d, service=%d, date=%s",
		req.ClientID, req.ProviderID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	date := domain.DateOnly(req.Date)

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailability: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	// 3. Действующая политика исполнителя
	p, err := uc.policies.Resolve(ctx, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to resolve policy for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to resolve policy: %v", ErrInternal, err)
	}
	p = p.ForService(service)

	// 4. Валидация даты
	if err := validateDate(date, now, p); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed: %v", err)
		return nil, err
	}

	resp := &Response{
		ProviderID:    req.ProviderID,
		ServiceID:     req.ServiceID,
		Date:          date,
		DailyCapacity: p.DailyCapacity,
	}

	// 5. Заблокированная дата: ни одного доступного слота
	blocked, err := uc.blocked.IsBlocked(ctx, req.ProviderID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to check blocked date: %v", err)
		return nil, fmt.Errorf("%w: failed to check blocked date: %v", ErrInternal, err)
	}
	if blocked {
		uc.logger.Info("GetAvailability: date %s is blocked for provider=%d", date.Format(domain.DateFormat), req.ProviderID)
		resp.Blocked = true
		resp.Slots = unavailableSlots(date, p)
		return resp, nil
	}

	// 6. Активные записи и загрузка класса услуги читаются одним снимком
	var existing []*domain.Appointment
	var requiredDays int

	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		providerID := req.ProviderID
		existing, err = uc.appointmentRepo.List(txCtx, domain.AppointmentFilter{ProviderID: &providerID}.ForDate(date))
		if err != nil {
			return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
		}

		requiredDays, err = uc.leadTime.RequiredLeadDays(txCtx, req.ProviderID, service.LeadTimeClass, date, now, p)
		if err != nil {
			return fmt.Errorf("%w: failed to compute lead time: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to read appointments: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 7. Оставшаяся вместимость и доступность сетки
	resp.Remaining = scheduling.Remaining(len(existing), p.DailyCapacity)
	resp.RequiredLeadDays = requiredDays
	resp.Slots = buildSlots(date, p, existing, resp.Remaining, scheduling.EarliestStart(now, requiredDays, p))

	uc.logger.Info("GetAvailability: provider=%d, date=%s, remaining=%d/%d, slots=%d",
		req.ProviderID, date.Format(domain.DateFormat), resp.Remaining, p.DailyCapacity, len(resp.Slots))

	return resp, nil
}
