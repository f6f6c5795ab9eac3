package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func testPolicy() domain.BookingPolicy {
	return domain.BookingPolicy{
		Location:              time.UTC,
		OpenTime:              types.MustParseTimeOfDay("11:00"),
		CloseTime:             types.MustParseTimeOfDay("20:00"),
		DurationMinutes:       90,
		GridMinutes:           30,
		DailyCapacity:         5,
		ClientCap:             2,
		LeadTimeThreshold:     5,
		LeadTimeBaseDays:      1,
		LeadTimeEscalatedDays: 2,
		LeadTimeLoadDate:      domain.LoadDateTomorrow,
	}
}

func at(hhmm string) time.Time {
	return types.MustParseTimeOfDay(hhmm).On(time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), time.UTC)
}

func appointment(start string, duration int, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{StartAt: at(start), DurationMinutes: duration, Status: status}
}

func TestGenerateGrid(t *testing.T) {
	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	t.Run("default business hours", func(t *testing.T) {
		slots := GenerateGrid(date, testPolicy())

		require.Len(t, slots, 16)
		assert.Equal(t, at("11:00"), slots[0])
		assert.Equal(t, at("18:30"), slots[len(slots)-1])
		for i := 1; i < len(slots); i++ {
			assert.Equal(t, 30*time.Minute, slots[i].Sub(slots[i-1]))
		}
	})

	t.Run("closing not aligned to grid", func(t *testing.T) {
		p := testPolicy()
		p.CloseTime = types.MustParseTimeOfDay("20:15")

		slots := GenerateGrid(date, p)

		assert.Equal(t, at("18:30"), slots[len(slots)-1])
	})

	t.Run("window shorter than duration", func(t *testing.T) {
		p := testPolicy()
		p.CloseTime = types.MustParseTimeOfDay("12:00")

		assert.Empty(t, GenerateGrid(date, p))
	})
}

func TestFloorToGrid(t *testing.T) {
	open := at("11:00")
	step := 30 * time.Minute

	assert.Equal(t, at("14:00"), FloorToGrid(at("14:00"), open, step))
	assert.Equal(t, at("14:00"), FloorToGrid(at("14:10"), open, step))
	assert.Equal(t, at("10:30"), FloorToGrid(at("10:45"), open, step))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical", "14:00", "15:30", "14:00", "15:30", true},
		{"partial", "13:30", "15:00", "14:00", "15:30", true},
		{"contained", "14:30", "15:00", "14:00", "15:30", true},
		{"touching end", "12:30", "14:00", "14:00", "15:30", false},
		{"touching start", "15:30", "17:00", "14:00", "15:30", false},
		{"disjoint", "11:00", "12:30", "14:00", "15:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(at(tt.s1), at(tt.e1), at(tt.s2), at(tt.e2)))
			assert.Equal(t, tt.want, Overlaps(at(tt.s2), at(tt.e2), at(tt.s1), at(tt.e1)))
		})
	}
}

func TestIsFree(t *testing.T) {
	existing := []*domain.Appointment{
		appointment("14:00", 90, domain.StatusScheduled),
		appointment("17:00", 90, domain.StatusCancelled),
	}
	d := 90 * time.Minute

	assert.True(t, IsFree(at("12:30"), d, existing))
	assert.False(t, IsFree(at("13:00"), d, existing))
	assert.False(t, IsFree(at("15:00"), d, existing))
	assert.True(t, IsFree(at("15:30"), d, existing))
	assert.True(t, IsFree(at("17:00"), d, existing), "cancelled appointments do not occupy the slot")
}

func TestOccupiedGrid(t *testing.T) {
	p := testPolicy()
	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	slots := GenerateGrid(date, p)
	open := at("11:00")

	t.Run("aligned appointment", func(t *testing.T) {
		set := OccupiedGrid(slots, open, p.Grid(), []*domain.Appointment{appointment("14:00", 90, domain.StatusConfirmed)})

		assert.True(t, set.Contains(at("14:00")))
		assert.True(t, set.Contains(at("14:30")))
		assert.True(t, set.Contains(at("15:00")))
		assert.False(t, set.Contains(at("13:30")))
		assert.False(t, set.Contains(at("15:30")))
	})

	t.Run("unaligned appointment occupies every touched grid point", func(t *testing.T) {
		set := OccupiedGrid(slots, open, p.Grid(), []*domain.Appointment{appointment("14:10", 90, domain.StatusScheduled)})

		assert.True(t, set.Contains(at("14:00")))
		assert.True(t, set.Contains(at("15:30")))
		assert.False(t, set.Contains(at("16:00")))
	})

	t.Run("inactive appointments ignored", func(t *testing.T) {
		set := OccupiedGrid(slots, open, p.Grid(), []*domain.Appointment{appointment("14:00", 90, domain.StatusCompleted)})

		assert.Empty(t, set)
	})
}

func TestCapacityPredicates(t *testing.T) {
	assert.True(t, HasCapacity(4, 5))
	assert.False(t, HasCapacity(5, 5))
	assert.Equal(t, 1, Remaining(4, 5))
	assert.Equal(t, 0, Remaining(7, 5))
	assert.True(t, WithinClientCap(1, 2))
	assert.False(t, WithinClientCap(2, 2))
}

func TestRequiredLeadDays(t *testing.T) {
	p := testPolicy()

	assert.Equal(t, 0, RequiredLeadDays(domain.LeadTimeStandard, 10, p))
	assert.Equal(t, 1, RequiredLeadDays(domain.LeadTimeNewRegistration, 4, p))
	assert.Equal(t, 2, RequiredLeadDays(domain.LeadTimeNewRegistration, 5, p))
}

func TestLoadReferenceDate(t *testing.T) {
	now := time.Date(2025, 8, 19, 15, 0, 0, 0, time.UTC)
	target := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)

	p := testPolicy()
	assert.Equal(t, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), LoadReferenceDate(now, target, p))

	p.LeadTimeLoadDate = domain.LoadDateTargetEve
	assert.Equal(t, time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC), LoadReferenceDate(now, target, p))
}

func TestSatisfiesLeadTime(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 8, 19, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		days  int
		want  bool
	}{
		{"standard later today", time.Date(2025, 8, 19, 16, 0, 0, 0, time.UTC), 0, true},
		{"standard in the past", time.Date(2025, 8, 19, 14, 0, 0, 0, time.UTC), 0, false},
		{"one day, tomorrow morning", time.Date(2025, 8, 20, 11, 0, 0, 0, time.UTC), 1, true},
		{"one day, later today", time.Date(2025, 8, 19, 18, 0, 0, 0, time.UTC), 1, false},
		{"two days, tomorrow", time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC), 2, false},
		{"two days, day after", time.Date(2025, 8, 21, 11, 0, 0, 0, time.UTC), 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SatisfiesLeadTime(tt.start, now, tt.days, p))
		})
	}
}

func TestEarliestStart_CountsCalendarDays(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 8, 20, 19, 45, 0, 0, time.UTC)

	assert.Equal(t, now, EarliestStart(now, 0, p))
	assert.Equal(t, time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC), EarliestStart(now, 1, p))
	assert.Equal(t, time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC), EarliestStart(now, 2, p))
	assert.True(t, SatisfiesLeadTime(time.Date(2025, 8, 21, 11, 0, 0, 0, time.UTC), now, 1, p))
}
