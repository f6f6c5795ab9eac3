package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	cancelBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
)

type stubUseCase struct {
	resp *cancelBooking.Response
	err  error
	got  *cancelBooking.Request
}

func (s *stubUseCase) Execute(_ context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(uc *stubUseCase, id string, payload string, actor domain.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+id+"/cancel", strings.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	req = req.WithContext(middleware.WithUser(req.Context(), 42, actor))

	rec := httptest.NewRecorder()
	NewHandler(uc, testutil.Logger()).Handle(rec, req)
	return rec
}

func TestHandle_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		resp       *cancelBooking.Response
		wantStatus int
	}{
		{name: "cancelled", resp: &cancelBooking.Response{Success: true}, wantStatus: http.StatusOK},
		{name: "not found", resp: &cancelBooking.Response{Reason: domain.ReasonNotFound}, wantStatus: http.StatusNotFound},
		{name: "already cancelled", resp: &cancelBooking.Response{Reason: domain.ReasonAlreadyCancelled}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{resp: tt.resp}

			rec := serve(uc, uuid.NewString(), `{"reason":"заболел"}`, domain.ActorClient)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body CancelBookingResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.resp.Success, body.Success)
			assert.Equal(t, string(tt.resp.Reason), body.Reason)
		})
	}
}

func TestHandle_PassesActorAndReason(t *testing.T) {
	uc := &stubUseCase{resp: &cancelBooking.Response{Success: true}}
	id := uuid.New()

	rec := serve(uc, id.String(), "", domain.ActorAdmin)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, uc.got.AppointmentID)
	assert.Equal(t, domain.ActorAdmin, uc.got.Actor)
	assert.Equal(t, int64(42), uc.got.RequesterID)
	assert.Nil(t, uc.got.Reason)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, "not-a-uuid", "", domain.ActorClient).Code)
	assert.Equal(t, http.StatusForbidden,
		serve(&stubUseCase{err: cancelBooking.ErrAccessDenied}, uuid.NewString(), "", domain.ActorClient).Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(&stubUseCase{err: cancelBooking.ErrInvalidInput}, uuid.NewString(), "", domain.ActorClient).Code)
}
