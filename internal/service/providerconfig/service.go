package providerconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	policyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/providerpolicy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig/models"
)

// Service сервис политики бронирования исполнителей
// Политика по умолчанию берётся из конфигурации, поверх неё применяются
// сохранённые переопределения исполнителя
type Service struct {
	repo     PolicyRepository
	defaults domain.BookingPolicy
	logger   Logger
}

// NewService создает новый экземпляр сервиса политики
func NewService(repo PolicyRepository, defaults domain.BookingPolicy, logger Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults возвращает политику из конфигурации сервиса
func (s *Service) Defaults() domain.BookingPolicy {
	return s.defaults
}

// Resolve возвращает действующую политику исполнителя
func (s *Service) Resolve(ctx context.Context, providerID int64) (domain.BookingPolicy, error) {
	overrides, err := s.getOverrides(ctx, providerID)
	if err != nil {
		s.logger.Error("Resolve: failed to get policy for provider=%d: %v", providerID, err)
		return domain.BookingPolicy{}, err
	}
	return s.defaults.WithOverrides(overrides), nil
}

// Get возвращает действующую политику и переопределения исполнителя
func (s *Service) Get(ctx context.Context, providerID int64) (*models.PolicyResponse, error) {
	s.logger.Info("Get: fetching policy for provider=%d", providerID)

	overrides, err := s.getOverrides(ctx, providerID)
	if err != nil {
		s.logger.Error("Get: failed to get policy for provider=%d: %v", providerID, err)
		return nil, err
	}

	return models.FromDomainPolicy(providerID, s.defaults.WithOverrides(overrides), overrides), nil
}

// Update заменяет переопределения исполнителя
func (s *Service) Update(ctx context.Context, providerID int64, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating policy for provider=%d", providerID)

	overrides := req.ToDomainPolicy(providerID)
	effective := s.defaults.WithOverrides(overrides)

	if err := validatePolicy(effective); err != nil {
		s.logger.Warn("Update: validation failed for provider=%d: %v", providerID, err)
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, overrides)
	if err != nil {
		s.logger.Error("Update: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated policy for provider=%d", providerID)
	return models.FromDomainPolicy(providerID, effective, saved), nil
}

func (s *Service) getOverrides(ctx context.Context, providerID int64) (*domain.ProviderPolicy, error) {
	overrides, err := s.repo.Get(ctx, providerID)
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: repository error: %v", ErrInternal, err)
	}
	return overrides, nil
}

// validatePolicy валидирует действующую политику после применения переопределений
func validatePolicy(p domain.BookingPolicy) error {
	if p.DailyCapacity < domain.MinDailyCapacity || p.DailyCapacity > domain.MaxDailyCapacity {
		return fmt.Errorf("%w: dailyCapacity must be between %d and %d",
			ErrInvalidInput, domain.MinDailyCapacity, domain.MaxDailyCapacity)
	}

	if p.ClientCap < domain.MinClientCap || p.ClientCap > domain.MaxClientCap {
		return fmt.Errorf("%w: clientCap must be between %d and %d",
			ErrInvalidInput, domain.MinClientCap, domain.MaxClientCap)
	}

	if p.LeadTimeThreshold < domain.MinLeadTimeThreshold || p.LeadTimeThreshold > domain.MaxLeadTimeThreshold {
		return fmt.Errorf("%w: leadTimeThreshold must be between %d and %d",
			ErrInvalidInput, domain.MinLeadTimeThreshold, domain.MaxLeadTimeThreshold)
	}

	if !p.OpenTime.IsValid() || !p.CloseTime.IsValid() {
		return fmt.Errorf("%w: openTime and closeTime must be within a day", ErrInvalidInput)
	}

	// В рабочие часы должна помещаться хотя бы одна запись
	if p.CloseTime.Minutes()-p.OpenTime.Minutes() < p.DurationMinutes {
		return fmt.Errorf("%w: business hours %s-%s are shorter than one appointment",
			ErrInvalidInput, p.OpenTime, p.CloseTime)
	}

	return nil
}
