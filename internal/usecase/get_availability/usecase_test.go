package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
)

const providerID int64 = 1

var (
	now      = time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)
	day      = time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	standard = &domain.Service{ID: 1, Name: "Консультация", LeadTimeClass: domain.LeadTimeStandard, IsActive: true}
	newReg   = &domain.Service{ID: 2, Name: "Регистрация", LeadTimeClass: domain.LeadTimeNewRegistration, IsActive: true}
)

type harness struct {
	store   *testutil.Store
	blocked *testutil.BlockedDates
	clock   *testutil.Clock
	uc      *UseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:   testutil.NewStore(),
		blocked: testutil.NewBlockedDates(),
		clock:   testutil.NewClock(now),
	}
	policies := providerconfig.NewService(testutil.NewPolicies(), testutil.Policy(), testutil.Logger())
	h.uc = NewUseCase(
		h.store,
		testutil.NewServices(standard, newReg),
		h.blocked,
		policies,
		policy.NewEngine(h.store, h.blocked),
		testutil.NewTxManager(h.store),
		testutil.Logger(),
	)
	h.uc.timeProvider = h.clock
	return h
}

func (h *harness) seed(clientID int64, start time.Time, class domain.LeadTimeClass) {
	h.store.Seed(&domain.Appointment{
		ClientID:        clientID,
		ProviderID:      providerID,
		StartAt:         start,
		DurationMinutes: 90,
		Status:          domain.StatusScheduled,
		LeadTimeClass:   class,
	})
}

func slotsByTime(slots []domain.SlotAvailability) map[string]bool {
	m := make(map[string]bool, len(slots))
	for _, s := range slots {
		m[s.StartAt.Format(domain.TimeFormat)] = s.Available
	}
	return m
}

func TestGetAvailability_EmptyDay(t *testing.T) {
	h := newHarness(t)

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day})

	require.NoError(t, err)
	assert.Equal(t, 5, resp.DailyCapacity)
	assert.Equal(t, 5, resp.Remaining)
	assert.False(t, resp.Blocked)
	require.Len(t, resp.Slots, 20)
	assert.Equal(t, "09:00", resp.Slots[0].StartAt.Format(domain.TimeFormat))
	assert.Equal(t, "18:30", resp.Slots[len(resp.Slots)-1].StartAt.Format(domain.TimeFormat))
	for _, s := range resp.Slots {
		assert.True(t, s.Available)
	}
}

func TestGetAvailability_OccupiedWindow(t *testing.T) {
	h := newHarness(t)
	h.seed(20, day.Add(14*time.Hour), domain.LeadTimeStandard)

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day})

	require.NoError(t, err)
	assert.Equal(t, 4, resp.Remaining)

	slots := slotsByTime(resp.Slots)
	// Запись 14:00-15:30 занимает 14:00, 14:30 и 15:00; 13:00 и 13:30 пересеклись бы с ней
	for _, busy := range []string{"13:00", "13:30", "14:00", "14:30", "15:00"} {
		assert.False(t, slots[busy], busy)
	}
	for _, free := range []string{"12:30", "15:30", "16:00"} {
		assert.True(t, slots[free], free)
	}
}

func TestGetAvailability_FullyBooked(t *testing.T) {
	h := newHarness(t)
	for i, hour := range []int{9, 11, 13, 15, 17} {
		h.seed(int64(100+i), day.Add(time.Duration(hour)*time.Hour), domain.LeadTimeStandard)
	}

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day})

	require.NoError(t, err)
	assert.Zero(t, resp.Remaining)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
}

func TestGetAvailability_BlockedDate(t *testing.T) {
	h := newHarness(t)
	h.blocked.Block(providerID, day)

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day})

	require.NoError(t, err)
	assert.True(t, resp.Blocked)
	assert.Zero(t, resp.Remaining)
	assert.NotEmpty(t, resp.Slots)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
}

func TestGetAvailability_TodayHidesPastSlots(t *testing.T) {
	h := newHarness(t)
	h.clock.Set(time.Date(2025, 8, 20, 12, 10, 0, 0, time.UTC))

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day})

	require.NoError(t, err)
	slots := slotsByTime(resp.Slots)
	assert.False(t, slots["12:00"])
	assert.True(t, slots["12:30"])
}

func TestGetAvailability_DistinguishedServiceLeadTime(t *testing.T) {
	h := newHarness(t)
	h.clock.Set(time.Date(2025, 8, 19, 10, 0, 0, 0, time.UTC))

	resp, err := h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: newReg.ID, Date: day})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RequiredLeadDays)
	assert.True(t, slotsByTime(resp.Slots)["09:00"])

	for i := 0; i < 5; i++ {
		h.seed(int64(100+i), day.Add(9*time.Hour+time.Duration(i)*90*time.Minute), domain.LeadTimeNewRegistration)
	}

	resp, err = h.uc.Execute(context.Background(), &Request{ProviderID: providerID, ServiceID: newReg.ID, Date: day})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RequiredLeadDays)
	for _, s := range resp.Slots {
		assert.False(t, s.Available)
	}
}

func TestGetAvailability_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{"missing provider", &Request{ServiceID: standard.ID, Date: day}, ErrInvalidInput},
		{"missing date", &Request{ProviderID: providerID, ServiceID: standard.ID}, ErrInvalidInput},
		{"past date", &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day.AddDate(0, 0, -5)}, ErrInvalidDate},
		{"beyond horizon", &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day.AddDate(2, 0, 0)}, ErrDateTooFarInFuture},
		{"unknown service", &Request{ProviderID: providerID, ServiceID: 42, Date: day}, ErrServiceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newHarness(t).uc.Execute(context.Background(), tt.req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, events.Event) {}

func TestGetAvailability_CancellationReleasesCapacity(t *testing.T) {
	h := newHarness(t)
	for i, hour := range []int{9, 11, 13, 15, 17} {
		h.seed(int64(100+i), day.Add(time.Duration(hour)*time.Hour), domain.LeadTimeStandard)
	}
	req := &Request{ProviderID: providerID, ServiceID: standard.ID, Date: day}

	before, err := h.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Zero(t, before.Remaining)

	target := h.store.All()[2]
	cancel := cancel_booking.NewUseCase(h.store, testutil.NewTxManager(h.store), nopEmitter{}, nil, testutil.Logger())
	resp, err := cancel.Execute(context.Background(), &cancel_booking.Request{
		AppointmentID: target.Reference,
		Actor:         domain.ActorAdmin,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	after, err := h.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Remaining)

	slots := slotsByTime(after.Slots)
	assert.True(t, slots["13:00"])
	assert.False(t, slots["11:00"])
}
