package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const outcomeSuccess = "success"

// UseCase use case отмены записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	events          EventEmitter
	metrics         *metrics.Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	events EventEmitter,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		events:          events,
		metrics:         m,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute отменяет запись и освобождает её место в вместимости дня
// Запись блокируется FOR UPDATE, поэтому две параллельные отмены не отменят её дважды
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: appointment=%s, actor=%s, requester=%d",
		req.AppointmentID, req.Actor, req.RequesterID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	var (
		cancelled *domain.Appointment
		reason    domain.RejectionReason
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := uc.appointmentRepo.GetByReferenceForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				reason = domain.ReasonNotFound
				return nil
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if req.Actor == domain.ActorClient && a.ClientID != req.RequesterID {
			return ErrAccessDenied
		}

		switch a.Status {
		case domain.StatusCancelled:
			reason = domain.ReasonAlreadyCancelled
			return nil
		case domain.StatusCompleted:
			// Завершённую запись отменить нельзя: для клиента её больше нет
			reason = domain.ReasonNotFound
			return nil
		}

		actor := req.Actor
		change := domain.StatusChange{
			Reason: req.Reason,
			Actor:  &actor,
			At:     uc.timeProvider.Now(),
		}
		if err := uc.appointmentRepo.UpdateStatus(txCtx, a.ID, domain.StatusCancelled, change); err != nil {
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}

		cancelled = a
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			uc.logger.Warn("CancelBooking: requester=%d is not the owner of appointment=%s", req.RequesterID, req.AppointmentID)
			return nil, err
		}
		uc.logger.Error("CancelBooking: failed to cancel appointment=%s: %v", req.AppointmentID, err)
		uc.metrics.ObserveCancellation("persistence_failure")
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	if reason != "" {
		uc.logger.Warn("CancelBooking: appointment=%s not cancelled, reason=%s", req.AppointmentID, reason)
		uc.metrics.ObserveCancellation(string(reason))
		return &Response{Reason: reason}, nil
	}

	uc.metrics.ObserveCancellation(outcomeSuccess)
	uc.logger.Info("CancelBooking: successfully cancelled appointment=%s, provider=%d, date=%s",
		cancelled.Reference, cancelled.ProviderID, cancelled.BookingDate.Format(domain.DateFormat))

	uc.events.Emit(ctx, events.Event{
		Type:           events.TypeBookingCancelled,
		ProviderID:     cancelled.ProviderID,
		Date:           domain.DateOnly(cancelled.BookingDate),
		AppointmentRef: cancelled.Reference,
		ClientID:       cancelled.ClientID,
		StartAt:        cancelled.StartAt,
		ServiceName:    cancelled.ServiceName,
	})

	return &Response{Success: true}, nil
}
