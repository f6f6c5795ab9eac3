package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Service сервис чтения записей и их жизненного цикла после бронирования
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Get получает запись по внешнему идентификатору
// Клиент видит только свою запись, администратор и система - любую
func (s *Service) Get(ctx context.Context, req *models.GetAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Get: fetching appointment id=%s for user=%d actor=%s", req.AppointmentID, req.UserID, req.Actor)

	appointment, err := s.appointmentRepo.GetByReference(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Get: appointment id=%s not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Get: repository error for appointment id=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	if req.Actor == domain.ActorClient && appointment.ClientID != req.UserID {
		s.logger.Warn("Get: access denied for user=%d to appointment id=%s", req.UserID, req.AppointmentID)
		return nil, ErrAccessDenied
	}

	s.logger.Info("Get: successfully fetched appointment id=%s", req.AppointmentID)
	return models.FromDomainAppointment(appointment), nil
}

// GetClientAppointments получает историю записей клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientAppointments(ctx context.Context, req *models.GetClientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetClientAppointments: fetching appointments for client=%d, status=%v", req.ClientID, req.Status)

	if req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetClientAppointments: invalid filter for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetClientAppointments: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientAppointments: successfully fetched %d appointments for client=%d", len(appointments), req.ClientID)
	return models.FromDomainAppointmentList(appointments), nil
}

// GetProviderAppointments получает записи исполнителя с фильтрацией по периоду и статусу
func (s *Service) GetProviderAppointments(ctx context.Context, req *models.GetProviderAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetProviderAppointments: fetching appointments for provider=%d", req.ProviderID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: provider id is required", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		s.logger.Warn("GetProviderAppointments: invalid period for provider=%d", req.ProviderID)
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderAppointments: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderAppointments: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderAppointments: successfully fetched %d appointments for provider=%d", len(appointments), req.ProviderID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Confirm подтверждает запись исполнителем (scheduled -> confirmed)
func (s *Service) Confirm(ctx context.Context, ref uuid.UUID) error {
	return s.transition(ctx, "Confirm", ref, domain.StatusConfirmed, (*domain.Appointment).CanBeConfirmed)
}

// Complete отмечает запись выполненной; завершённая запись освобождает вместимость дня
func (s *Service) Complete(ctx context.Context, ref uuid.UUID) error {
	return s.transition(ctx, "Complete", ref, domain.StatusCompleted, (*domain.Appointment).CanBeCompleted)
}

func (s *Service) transition(
	ctx context.Context,
	op string,
	ref uuid.UUID,
	status domain.AppointmentStatus,
	allowed func(*domain.Appointment) bool,
) error {
	s.logger.Info("%s: updating appointment id=%s to status=%s", op, ref, status)

	if ref == uuid.Nil {
		return fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appointment, err := s.appointmentRepo.GetByReferenceForUpdate(ctx, ref)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - get appointment: %v", ErrInternal, op, err)
		}

		if !allowed(appointment) {
			s.logger.Warn("%s: appointment id=%s cannot move from status=%s", op, ref, appointment.Status)
			return ErrInvalidTransition
		}

		change := domain.StatusChange{At: s.timeProvider.Now()}
		if err := s.appointmentRepo.UpdateStatus(ctx, appointment.ID, status, change); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - update status: %v", ErrInternal, op, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("%s: failed for appointment id=%s: %v", op, ref, err)
		}
		return err
	}

	s.logger.Info("%s: successfully updated appointment id=%s to status=%s", op, ref, status)
	return nil
}
