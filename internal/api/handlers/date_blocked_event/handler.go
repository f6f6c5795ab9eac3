package date_blocked_event

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
)

const (
	msgInvalidProviderID = "некорректный ID исполнителя"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgNotBlocked        = "дата не заблокирована"
)

type Handler struct {
	blocked BlockedDateChecker
	events  EventEmitter
	logger  Logger
}

func NewHandler(blocked BlockedDateChecker, events EventEmitter, logger Logger) *Handler {
	return &Handler{
		blocked: blocked,
		events:  events,
		logger:  logger,
	}
}

// Handle POST /api/v1/providers/{providerId}/blocked-dates/{date}/events
// Администратор сообщает о новой блокировке; рассылка уходит подписчикам даты
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("POST /providers/{id}/blocked-dates/{date}/events - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	date, err := time.Parse(domain.DateFormat, vars["date"])
	if err != nil {
		h.logger.Warn("POST /providers/{id}/blocked-dates/{date}/events - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	blocked, err := h.blocked.IsBlocked(r.Context(), providerID, date)
	if err != nil {
		h.logger.Error("POST /providers/{id}/blocked-dates/{date}/events - Failed to check date: provider_id=%d, error=%v",
			providerID, err)
		handlers.RespondInternalError(w)
		return
	}
	if !blocked {
		h.logger.Warn("POST /providers/{id}/blocked-dates/{date}/events - Date is not blocked: provider_id=%d, date=%s",
			providerID, vars["date"])
		handlers.RespondError(w, http.StatusConflict, msgNotBlocked)
		return
	}

	h.events.Emit(r.Context(), events.Event{
		Type:       events.TypeDateBlocked,
		ProviderID: providerID,
		Date:       date,
	})

	h.logger.Info("POST /providers/{id}/blocked-dates/{date}/events - Date block announced: provider_id=%d, date=%s",
		providerID, vars["date"])
	handlers.RespondJSON(w, http.StatusAccepted, map[string]bool{"success": true})
}
