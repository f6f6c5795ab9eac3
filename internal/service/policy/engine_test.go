package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
)

const providerID int64 = 1

var (
	standard = &domain.Service{ID: 1, Name: "Консультация", LeadTimeClass: domain.LeadTimeStandard, IsActive: true}
	newReg   = &domain.Service{ID: 2, Name: "Регистрация", LeadTimeClass: domain.LeadTimeNewRegistration, IsActive: true}
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 8, day, hour, minute, 0, 0, time.UTC)
}

func appt(clientID int64, start time.Time, class domain.LeadTimeClass) *domain.Appointment {
	return &domain.Appointment{
		ClientID:        clientID,
		ProviderID:      providerID,
		ServiceID:       1,
		StartAt:         start,
		DurationMinutes: 90,
		Status:          domain.StatusScheduled,
		LeadTimeClass:   class,
	}
}

func newEngine(store *testutil.Store, blocked *testutil.BlockedDates) *Engine {
	return NewEngine(store, blocked)
}

func candidate(clientID int64, svc *domain.Service, start, now time.Time) Candidate {
	return Candidate{
		ProviderID: providerID,
		ClientID:   clientID,
		Service:    svc,
		StartAt:    start,
		Now:        now,
		Policy:     testutil.Policy(),
	}
}

func TestEngine_Evaluate(t *testing.T) {
	now := at(18, 8, 0)

	t.Run("admits open slot", func(t *testing.T) {
		engine := newEngine(testutil.NewStore(), testutil.NewBlockedDates())

		d, err := engine.Evaluate(context.Background(), candidate(10, standard, at(20, 11, 0), now))

		require.NoError(t, err)
		assert.True(t, d.Admissible)
		assert.Empty(t, d.Reason)
	})

	t.Run("blocked date wins over full capacity", func(t *testing.T) {
		store := testutil.NewStore()
		for i, h := range []int{9, 11, 13, 15, 17} {
			store.Seed(appt(int64(100+i), at(20, h, 0), domain.LeadTimeStandard))
		}
		blocked := testutil.NewBlockedDates()
		blocked.Block(providerID, at(20, 0, 0))

		d, err := newEngine(store, blocked).Evaluate(context.Background(), candidate(10, standard, at(20, 18, 0), now))

		require.NoError(t, err)
		assert.False(t, d.Admissible)
		assert.Equal(t, domain.ReasonBlockedDate, d.Reason)
	})

	t.Run("rejects when daily capacity is reached", func(t *testing.T) {
		store := testutil.NewStore()
		for i, h := range []int{9, 11, 13, 15, 17} {
			store.Seed(appt(int64(100+i), at(20, h, 0), domain.LeadTimeStandard))
		}

		d, err := newEngine(store, testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(20, 18, 30), now))

		require.NoError(t, err)
		assert.Equal(t, domain.ReasonCapacityExceeded, d.Reason)
	})

	t.Run("rejects third future appointment of a client on any date", func(t *testing.T) {
		store := testutil.NewStore()
		store.Seed(
			appt(10, at(21, 9, 0), domain.LeadTimeStandard),
			appt(10, at(25, 9, 0), domain.LeadTimeStandard),
		)

		d, err := newEngine(store, testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(20, 11, 0), now))

		require.NoError(t, err)
		assert.Equal(t, domain.ReasonClientCapExceeded, d.Reason)
	})

	t.Run("past and cancelled appointments do not count towards client cap", func(t *testing.T) {
		store := testutil.NewStore()
		past := appt(10, at(10, 9, 0), domain.LeadTimeStandard)
		cancelled := appt(10, at(25, 9, 0), domain.LeadTimeStandard)
		cancelled.Status = domain.StatusCancelled
		store.Seed(past, cancelled, appt(10, at(26, 9, 0), domain.LeadTimeStandard))

		d, err := newEngine(store, testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(20, 11, 0), now))

		require.NoError(t, err)
		assert.True(t, d.Admissible)
	})

	t.Run("rejects overlapping slot", func(t *testing.T) {
		store := testutil.NewStore()
		store.Seed(appt(20, at(20, 14, 0), domain.LeadTimeStandard))

		d, err := newEngine(store, testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(20, 14, 30), now))

		require.NoError(t, err)
		assert.Equal(t, domain.ReasonSlotConflict, d.Reason)
	})

	t.Run("adjacent slot is not a conflict", func(t *testing.T) {
		store := testutil.NewStore()
		store.Seed(appt(20, at(20, 14, 0), domain.LeadTimeStandard))

		d, err := newEngine(store, testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(20, 15, 30), now))

		require.NoError(t, err)
		assert.True(t, d.Admissible)
	})

	t.Run("standard service in the past violates lead time", func(t *testing.T) {
		d, err := newEngine(testutil.NewStore(), testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, standard, at(18, 7, 30), now))

		require.NoError(t, err)
		assert.Equal(t, domain.ReasonLeadTimeViolation, d.Reason)
		assert.Zero(t, d.RequiredLeadDays)
	})

	t.Run("read failure is an error, not a rejection", func(t *testing.T) {
		blocked := testutil.NewBlockedDates()
		blocked.Err = errors.New("connection reset")

		_, err := newEngine(testutil.NewStore(), blocked).
			Evaluate(context.Background(), candidate(10, standard, at(20, 11, 0), now))

		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("candidate without service is invalid", func(t *testing.T) {
		_, err := newEngine(testutil.NewStore(), testutil.NewBlockedDates()).
			Evaluate(context.Background(), candidate(10, nil, at(20, 11, 0), now))

		assert.ErrorIs(t, err, ErrInvalidCandidate)
	})
}

func TestEngine_LeadTimeEscalation(t *testing.T) {
	now := at(19, 10, 0)
	target := at(20, 17, 0)

	seedLoad := func(n int) *testutil.Store {
		store := testutil.NewStore()
		for i := 0; i < n; i++ {
			store.Seed(appt(int64(100+i), at(20, 9, 0).Add(time.Duration(i)*90*time.Minute), domain.LeadTimeNewRegistration))
		}
		return store
	}

	withCapacity := func(c Candidate) Candidate {
		c.Policy.DailyCapacity = 10
		return c
	}

	t.Run("below threshold requires one day", func(t *testing.T) {
		engine := newEngine(seedLoad(4), testutil.NewBlockedDates())

		d, err := engine.Evaluate(context.Background(), withCapacity(candidate(10, newReg, target, now)))

		require.NoError(t, err)
		assert.True(t, d.Admissible)
		assert.Equal(t, 1, d.RequiredLeadDays)
	})

	t.Run("at threshold escalates to two days", func(t *testing.T) {
		engine := newEngine(seedLoad(5), testutil.NewBlockedDates())

		d, err := engine.Evaluate(context.Background(), withCapacity(candidate(10, newReg, target, now)))

		require.NoError(t, err)
		assert.False(t, d.Admissible)
		assert.Equal(t, domain.ReasonLeadTimeViolation, d.Reason)
		assert.Equal(t, 2, d.RequiredLeadDays)
	})

	t.Run("escalated lead time admits the day after", func(t *testing.T) {
		engine := newEngine(seedLoad(5), testutil.NewBlockedDates())

		d, err := engine.Evaluate(context.Background(), withCapacity(candidate(10, newReg, at(21, 9, 0), now)))

		require.NoError(t, err)
		assert.True(t, d.Admissible)
		assert.Equal(t, 2, d.RequiredLeadDays)
	})

	t.Run("standard services ignore class load", func(t *testing.T) {
		engine := newEngine(seedLoad(5), testutil.NewBlockedDates())

		days, err := engine.RequiredLeadDays(context.Background(), providerID, domain.LeadTimeStandard, target, now, testutil.Policy())

		require.NoError(t, err)
		assert.Zero(t, days)
	})

	t.Run("same day booking of distinguished service is rejected", func(t *testing.T) {
		engine := newEngine(testutil.NewStore(), testutil.NewBlockedDates())

		d, err := engine.Evaluate(context.Background(), candidate(10, newReg, at(19, 15, 0), now))

		require.NoError(t, err)
		assert.Equal(t, domain.ReasonLeadTimeViolation, d.Reason)
		assert.Equal(t, 1, d.RequiredLeadDays)
	})
}
