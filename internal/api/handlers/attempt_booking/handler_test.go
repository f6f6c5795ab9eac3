package attempt_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	attemptBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/attempt_booking"
)

type stubUseCase struct {
	resp *attemptBooking.Response
	err  error
	got  *attemptBooking.Request
}

func (s *stubUseCase) Execute(_ context.Context, req *attemptBooking.Request) (*attemptBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

const body = `{"providerId":1,"serviceId":2,"startTime":"2025-08-20T10:00:00Z"}`

func serve(t *testing.T, uc *stubUseCase, payload string, withUser bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(payload))
	if withUser {
		req = req.WithContext(middleware.WithUser(req.Context(), 42, domain.ActorClient))
	}
	rec := httptest.NewRecorder()
	NewHandler(uc, testutil.Logger()).Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	id := uuid.New()
	start := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &attemptBooking.Response{
		Success:       true,
		AppointmentID: id,
		ProviderID:    1,
		ServiceID:     2,
		StartAt:       start,
		BookingDate:   domain.DateOnly(start),
		Status:        domain.StatusScheduled,
	}}

	rec := serve(t, uc, body, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), uc.got.ClientID)
	assert.True(t, uc.got.StartAt.Equal(start))

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.AppointmentID)
	assert.Equal(t, id, *resp.AppointmentID)
	assert.Equal(t, "2025-08-20", resp.BookingDate)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		reason     domain.RejectionReason
		leadDays   int
		wantStatus int
	}{
		{reason: domain.ReasonSlotConflict, wantStatus: http.StatusConflict},
		{reason: domain.ReasonCapacityExceeded, wantStatus: http.StatusConflict},
		{reason: domain.ReasonClientCapExceeded, wantStatus: http.StatusConflict},
		{reason: domain.ReasonBlockedDate, wantStatus: http.StatusConflict},
		{reason: domain.ReasonLeadTimeViolation, leadDays: 2, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			uc := &stubUseCase{resp: &attemptBooking.Response{Reason: tt.reason, RequiredLeadDays: tt.leadDays}}

			rec := serve(t, uc, body, true)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp BookingResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, string(tt.reason), resp.Reason)
			assert.Equal(t, tt.leadDays, resp.RequiredLeadDays)
			assert.Nil(t, resp.AppointmentID)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "service not found", err: attemptBooking.ErrServiceNotFound, wantStatus: http.StatusNotFound},
		{name: "off grid", err: attemptBooking.ErrInvalidTimeSlot, wantStatus: http.StatusBadRequest},
		{name: "customer", err: attemptBooking.ErrInvalidCustomer, wantStatus: http.StatusBadRequest},
		{name: "persistence failure", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubUseCase{err: tt.err}, body, true)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, serve(t, &stubUseCase{}, body, false).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, &stubUseCase{}, `{"providerId":`, true).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, &stubUseCase{}, `{"startTime":"10:00"}`, true).Code)
}
