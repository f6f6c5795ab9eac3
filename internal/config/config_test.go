package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, types.MustParseTimeOfDay("11:00"), cfg.Booking.OpenTime)
	assert.Equal(t, types.MustParseTimeOfDay("20:00"), cfg.Booking.CloseTime)
	assert.Equal(t, 90, cfg.Booking.AppointmentDurationMins)
	assert.Equal(t, 30, cfg.Booking.GridMinutes)
	assert.Equal(t, 5, cfg.Booking.DailyCapacity)
	assert.Equal(t, 2, cfg.Booking.ClientCap)
	assert.Equal(t, domain.LoadDateTomorrow, cfg.Booking.LeadTimeLoadDate)
	assert.False(t, cfg.Kafka.Enabled())

	policy, err := cfg.Booking.Policy()
	require.NoError(t, err)
	assert.Equal(t, "America/Toronto", policy.Location.String())
	assert.Equal(t, 90*time.Minute, policy.Duration())
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse(`
[server]
http_port = 9090

[database]
host = "db"
user = "app"
password = "secret"
dbname = "appointments"

[booking]
open_time = "09:00"
close_time = "18:00"
daily_capacity = 8
lead_time_load_date = "target_eve"

[kafka]
brokers = ["kafka:9092"]
`)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, types.MustParseTimeOfDay("09:00"), cfg.Booking.OpenTime)
	assert.Equal(t, 8, cfg.Booking.DailyCapacity)
	assert.Equal(t, 2, cfg.Booking.ClientCap)
	assert.Equal(t, domain.LoadDateTargetEve, cfg.Booking.LeadTimeLoadDate)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=appointments sslmode=disable", cfg.Database.DSN())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "close before open", data: "[booking]\nopen_time = \"20:00\"\nclose_time = \"11:00\""},
		{name: "unknown timezone", data: "[booking]\ntimezone = \"Mars/Olympus\""},
		{name: "zero capacity", data: "[booking]\ndaily_capacity = 0"},
		{name: "unknown load date", data: "[booking]\nlead_time_load_date = \"yesterday\""},
		{name: "bad port", data: "[server]\nhttp_port = 70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_BadTimeOfDay(t *testing.T) {
	_, err := Parse("[booking]\nopen_time = \"eleven\"")
	assert.ErrorIs(t, err, ErrReadConfig)
}
