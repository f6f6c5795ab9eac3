package attempt_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// commit повторно проверяет пересечение, вместимость и лимит клиента в сериализуемой
// транзакции под advisory-блокировками клиента и (исполнитель, дата), затем вставляет запись.
// Пересечение проверяется первым: проигравший гонку за слот получает slot_conflict.
// Автоматического повтора нет
func (uc *UseCase) commit(
	ctx context.Context,
	req *Request,
	service *domain.Service,
	p domain.BookingPolicy,
	now time.Time,
) (*domain.Appointment, domain.RejectionReason, error) {
	date := p.DateOf(req.StartAt)

	var created *domain.Appointment

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.appointmentRepo.LockScope(txCtx, clientScope(req.ClientID), providerDayScope(req.ProviderID, date)); err != nil {
			return fmt.Errorf("%w: failed to lock scope: %v", ErrInternal, err)
		}

		providerID := req.ProviderID
		dayFilter := domain.AppointmentFilter{ProviderID: &providerID}.ForDate(date)

		existing, err := uc.appointmentRepo.List(txCtx, dayFilter)
		if err != nil {
			return fmt.Errorf("%w: failed to list day appointments: %v", ErrInternal, err)
		}
		if conflict := scheduling.FindConflict(req.StartAt, p.Duration(), existing); conflict != nil {
			uc.logger.Warn("AttemptBooking: commit - slot %s overlaps appointment id=%d",
				req.StartAt.Format(time.RFC3339), conflict.ID)
			return &rejection{reason: domain.ReasonSlotConflict}
		}

		activeCount, err := uc.appointmentRepo.Count(txCtx, dayFilter)
		if err != nil {
			return fmt.Errorf("%w: failed to count day appointments: %v", ErrInternal, err)
		}
		if !scheduling.HasCapacity(activeCount, p.DailyCapacity) {
			uc.logger.Warn("AttemptBooking: commit - capacity exhausted, %d/%d on %s",
				activeCount, p.DailyCapacity, date.Format(domain.DateFormat))
			return &rejection{reason: domain.ReasonCapacityExceeded}
		}

		clientID := req.ClientID
		clientCount, err := uc.appointmentRepo.Count(txCtx, domain.AppointmentFilter{
			ClientID:   &clientID,
			StartsFrom: &now,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to count client appointments: %v", ErrInternal, err)
		}
		if !scheduling.WithinClientCap(clientCount, p.ClientCap) {
			uc.logger.Warn("AttemptBooking: commit - client=%d already has %d active appointments", req.ClientID, clientCount)
			return &rejection{reason: domain.ReasonClientCapExceeded}
		}

		appointment := &domain.Appointment{
			ClientID:        req.ClientID,
			ProviderID:      req.ProviderID,
			ServiceID:       service.ID,
			StartAt:         req.StartAt,
			BookingDate:     date,
			DurationMinutes: p.DurationMinutes,
			Status:          domain.StatusScheduled,
			ServiceName:     service.Name,
			LeadTimeClass:   service.LeadTimeClass,
			Customer:        req.Customer,
		}

		created, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			if appointmentRepo.IsConflict(err) {
				return &rejection{reason: domain.ReasonSlotConflict}
			}
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		var rej *rejection
		if errors.As(err, &rej) {
			return nil, rej.reason, nil
		}
		// Ошибка сериализации при COMMIT: параллельная транзакция заняла слот
		if appointmentRepo.IsConflict(err) {
			uc.logger.Warn("AttemptBooking: commit - serialization conflict: %v", err)
			return nil, domain.ReasonSlotConflict, nil
		}
		if errors.Is(err, ErrInternal) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	return created, "", nil
}

func clientScope(clientID int64) string {
	return fmt.Sprintf("client:%d", clientID)
}

func providerDayScope(providerID int64, date time.Time) string {
	return fmt.Sprintf("provider:%d:%s", providerID, date.Format(domain.DateFormat))
}
