package attempt_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	attemptBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/attempt_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgServiceNotFound    = "услуга не найдена"
	msgInvalidTimeSlot    = "время начала не совпадает со слотом рабочего дня"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgInvalidCustomer    = "некорректно заполнена анкета клиента"
	msgInvalidInput       = "некорректные данные записи"
)

type Handler struct {
	useCase AttemptBookingUseCase
	logger  Logger
}

func NewHandler(useCase AttemptBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AttemptBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(clientID))
	if err != nil {
		switch {
		case errors.Is(err, attemptBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: client_id=%d, service_id=%d", clientID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, attemptBooking.ErrInvalidTimeSlot):
			h.logger.Warn("POST /bookings - Invalid time slot: client_id=%d, provider_id=%d, start=%s",
				clientID, req.ProviderID, req.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, attemptBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: client_id=%d, provider_id=%d", clientID, req.ProviderID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, attemptBooking.ErrInvalidCustomer):
			h.logger.Warn("POST /bookings - Invalid customer profile: client_id=%d: %v", clientID, err)
			handlers.RespondBadRequest(w, msgInvalidCustomer)

		case errors.Is(err, attemptBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: client_id=%d: %v", clientID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to book: client_id=%d, provider_id=%d, error=%v",
				clientID, req.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	if !result.Success {
		h.logger.Info("POST /bookings - Booking rejected: client_id=%d, provider_id=%d, reason=%s",
			clientID, req.ProviderID, result.Reason)
		handlers.RespondJSON(w, rejectionStatus(result.Reason), response)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: appointment_id=%s, client_id=%d, provider_id=%d",
		result.AppointmentID, clientID, req.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
