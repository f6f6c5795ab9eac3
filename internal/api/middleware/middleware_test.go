package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

func TestAuth(t *testing.T) {
	var (
		gotID    int64
		gotActor domain.Actor
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		gotActor, _ = GetActor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantActor  domain.Actor
	}{
		{name: "client by default", userID: "42", wantStatus: http.StatusNoContent, wantActor: domain.ActorClient},
		{name: "admin role", userID: "7", role: "admin", wantStatus: http.StatusNoContent, wantActor: domain.ActorAdmin},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "not a number", userID: "abc", wantStatus: http.StatusUnauthorized},
		{name: "negative id", userID: "-1", wantStatus: http.StatusUnauthorized},
		{name: "system role is not accepted over http", userID: "1", role: "system", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotActor = 0, ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderRole, tt.role)
			}
			rec := httptest.NewRecorder()

			Auth(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Positive(t, gotID)
				assert.Equal(t, tt.wantActor, gotActor)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	AdminOnly(next).ServeHTTP(rec, req.WithContext(WithUser(req.Context(), 1, domain.ActorClient)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	AdminOnly(next).ServeHTTP(rec, req.WithContext(WithUser(req.Context(), 1, domain.ActorAdmin)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("appointments", reg)

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/providers/{providerId}/availability", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/providers/17/availability", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	families, err := reg.Gather()
	assert.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == "/providers/{providerId}/availability" && labels["status"] == "418" {
				found = true
			}
		}
	}
	assert.True(t, found, "request must be recorded under the route template")
}
