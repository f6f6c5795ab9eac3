package subscribe_availability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgInvalidProviderID  = "некорректный ID исполнителя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
)

// SubscriptionRequest HTTP request model
type SubscriptionRequest struct {
	Date string `json:"date"` // "2025-10-15"
}

type Handler struct {
	registry SubscriberRegistry
	logger   Logger
}

func NewHandler(registry SubscriberRegistry, logger Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Subscribe POST /api/v1/providers/{providerId}/availability/subscriptions
// Клиент попадает в список получателей уведомлений о доступности даты
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	const route = "POST /providers/{id}/availability/subscriptions"

	providerID, clientID, ok := h.parseIDs(w, r, route)
	if !ok {
		return
	}

	var req SubscriptionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if err := h.registry.Subscribe(r.Context(), providerID, date, clientID); err != nil {
		h.logger.Error("%s - Failed to subscribe: provider_id=%d, client_id=%d, error=%v", route, providerID, clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s - Subscribed: provider_id=%d, client_id=%d, date=%s", route, providerID, clientID, req.Date)
	handlers.RespondJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// Unsubscribe DELETE /api/v1/providers/{providerId}/availability/subscriptions?date=YYYY-MM-DD
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	const route = "DELETE /providers/{id}/availability/subscriptions"

	providerID, clientID, ok := h.parseIDs(w, r, route)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if err := h.registry.Unsubscribe(r.Context(), providerID, date, clientID); err != nil {
		h.logger.Error("%s - Failed to unsubscribe: provider_id=%d, client_id=%d, error=%v", route, providerID, clientID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("%s - Unsubscribed: provider_id=%d, client_id=%d, date=%s", route, providerID, clientID, dateStr)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseIDs(w http.ResponseWriter, r *http.Request, route string) (int64, int64, bool) {
	providerID, err := strconv.ParseInt(mux.Vars(r)["providerId"], 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("%s - Invalid provider ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return 0, 0, false
	}

	clientID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return providerID, clientID, true
}
