package update_booking_status

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgNotFound             = "запись не найдена"
	msgInvalidTransition    = "недопустимый переход статуса записи"
)

// Action переход статуса, выполняемый обработчиком
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionComplete Action = "complete"
)

type Handler struct {
	service BookingService
	action  Action
	logger  Logger
}

func NewHandler(service BookingService, action Action, logger Logger) *Handler {
	return &Handler{
		service: service,
		action:  action,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{appointmentId}/confirm и /complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	route := fmt.Sprintf("PATCH /bookings/{id}/%s", h.action)

	appointmentID, err := uuid.Parse(mux.Vars(r)["appointmentId"])
	if err != nil {
		h.logger.Warn("%s - Invalid appointment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	if err := h.apply(r.Context(), appointmentID); err != nil {
		switch {
		case errors.Is(err, bookings.ErrAppointmentNotFound):
			h.logger.Warn("%s - Appointment not found: appointment_id=%s", route, appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: appointment_id=%s", route, appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("%s - Failed to update appointment: appointment_id=%s, error=%v", route, appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Appointment updated successfully: appointment_id=%s", route, appointmentID)
	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) apply(ctx context.Context, id uuid.UUID) error {
	if h.action == ActionComplete {
		return h.service.Complete(ctx, id)
	}
	return h.service.Confirm(ctx, id)
}
