package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond, nil)
		m.SetDBPoolStats(1, 1, 0, 0)
		m.ObserveTransaction("serializable", "commit")
		m.ObserveBookingAttempt("created")
		m.ObserveCancellation("cancelled")
		m.ObserveNotification("last_slot", "sent")
	})
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry("appointments", reg)

	m.ObserveBookingAttempt("created")
	m.ObserveBookingAttempt("created")
	m.ObserveBookingAttempt("slot_conflict")
	m.ObserveDBQuery("exec", time.Millisecond, errors.New("boom"))

	families, err := reg.Gather()
	require.NoError(t, err)

	counters := make(map[string]float64)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "outcome" || lp.GetName() == "operation" {
					key += "/" + lp.GetValue()
				}
			}
			counters[key] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 2.0, counters["booking_attempts_total/created"])
	assert.Equal(t, 1.0, counters["booking_attempts_total/slot_conflict"])
	assert.Equal(t, 1.0, counters["db_query_errors_total/exec"])
}
