package attempt_booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const providerID int64 = 1

var (
	now      = time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC)
	standard = &domain.Service{ID: 1, Name: "Консультация", LeadTimeClass: domain.LeadTimeStandard, IsActive: true}
	newReg   = &domain.Service{ID: 2, Name: "Регистрация", LeadTimeClass: domain.LeadTimeNewRegistration, IsActive: true}
	inactive = &domain.Service{ID: 3, Name: "Архив", LeadTimeClass: domain.LeadTimeStandard}
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 8, day, hour, minute, 0, 0, time.UTC)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type harness struct {
	store   *testutil.Store
	blocked *testutil.BlockedDates
	emitter *recordingEmitter
	uc      *UseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:   testutil.NewStore(),
		blocked: testutil.NewBlockedDates(),
		emitter: &recordingEmitter{},
	}
	policies := providerconfig.NewService(testutil.NewPolicies(), testutil.Policy(), testutil.Logger())
	h.uc = NewUseCase(
		h.store,
		testutil.NewServices(standard, newReg, inactive),
		policies,
		policy.NewEngine(h.store, h.blocked),
		testutil.NewTxManager(h.store),
		h.emitter,
		nil,
		testutil.Logger(),
	)
	h.uc.timeProvider = testutil.NewClock(now)
	return h
}

func (h *harness) seed(clientID int64, start time.Time) {
	h.store.Seed(&domain.Appointment{
		ClientID:        clientID,
		ProviderID:      providerID,
		ServiceID:       standard.ID,
		StartAt:         start,
		DurationMinutes: 90,
		Status:          domain.StatusScheduled,
		LeadTimeClass:   domain.LeadTimeStandard,
	})
}

func request(clientID int64, start time.Time) *Request {
	return &Request{
		ClientID:   clientID,
		ProviderID: providerID,
		ServiceID:  standard.ID,
		StartAt:    start,
	}
}

func TestAttemptBooking_Success(t *testing.T) {
	h := newHarness(t)

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 11, 0)))

	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.AppointmentID)
	assert.Equal(t, domain.StatusScheduled, resp.Status)
	assert.Equal(t, 90, resp.DurationMinutes)
	assert.Equal(t, at(20, 0, 0), resp.BookingDate)

	stored := h.store.All()
	require.Len(t, stored, 1)
	assert.Equal(t, resp.AppointmentID, stored[0].Reference)
	assert.Equal(t, standard.Name, stored[0].ServiceName)

	require.Len(t, h.emitter.events, 1)
	e := h.emitter.events[0]
	assert.Equal(t, events.TypeBookingCreated, e.Type)
	assert.Equal(t, at(20, 0, 0), e.Date)
	assert.Equal(t, resp.AppointmentID, e.AppointmentRef)
}

func TestAttemptBooking_CapacityScenario(t *testing.T) {
	h := newHarness(t)
	for i, hour := range []int{9, 11, 13, 15} {
		h.seed(int64(100+i), at(20, hour, 0))
	}

	fifth, err := h.uc.Execute(context.Background(), request(10, at(20, 17, 0)))
	require.NoError(t, err)
	assert.True(t, fifth.Success)

	sixth, err := h.uc.Execute(context.Background(), request(11, at(20, 18, 30)))
	require.NoError(t, err)
	assert.False(t, sixth.Success)
	assert.Equal(t, domain.ReasonCapacityExceeded, sixth.Reason)

	assert.Len(t, h.store.All(), 5)
	assert.Len(t, h.emitter.events, 1)
}

func TestAttemptBooking_ClientCapScenario(t *testing.T) {
	h := newHarness(t)
	h.seed(10, at(21, 9, 0))
	h.seed(10, at(28, 9, 0))

	resp, err := h.uc.Execute(context.Background(), request(10, at(25, 13, 0)))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonClientCapExceeded, resp.Reason)
	assert.Empty(t, h.emitter.events)
}

func TestAttemptBooking_BlockedDate(t *testing.T) {
	h := newHarness(t)
	h.blocked.Block(providerID, at(20, 0, 0))

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 11, 0)))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonBlockedDate, resp.Reason)
}

func TestAttemptBooking_LeadTimeViolationReportsRequiredDays(t *testing.T) {
	h := newHarness(t)
	req := request(10, at(18, 15, 0))
	req.ServiceID = newReg.ID

	resp, err := h.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, domain.ReasonLeadTimeViolation, resp.Reason)
	assert.Equal(t, 1, resp.RequiredLeadDays)
}

func TestAttemptBooking_ConcurrentSameSlot(t *testing.T) {
	h := newHarness(t)
	const callers = 8

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*Response, callers)
		errs    = make([]error, callers)
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = h.uc.Execute(context.Background(), request(int64(10+i), at(20, 10, 0)))
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		if results[i].Success {
			winners++
			continue
		}
		assert.Equal(t, domain.ReasonSlotConflict, results[i].Reason)
	}

	assert.Equal(t, 1, winners)
	active, err := h.store.Count(context.Background(), domain.AppointmentFilter{}.ForDate(at(20, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

type admitAll struct{}

func (admitAll) Evaluate(context.Context, policy.Candidate) (policy.Decision, error) {
	return policy.Decision{Admissible: true}, nil
}

func TestAttemptBooking_CommitRechecksOverlap(t *testing.T) {
	h := newHarness(t)
	h.uc.engine = admitAll{}
	h.seed(20, at(20, 14, 0))

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 13, 0)))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonSlotConflict, resp.Reason)
	assert.Len(t, h.store.All(), 1)
}

func TestAttemptBooking_CommitRechecksCapacity(t *testing.T) {
	h := newHarness(t)
	h.uc.engine = admitAll{}
	for i, hour := range []int{9, 11, 13, 15, 17} {
		h.seed(int64(100+i), at(20, hour, 0))
	}

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 18, 30)))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonCapacityExceeded, resp.Reason)
}

func TestAttemptBooking_RaceForLastPlaceIsSlotConflict(t *testing.T) {
	h := newHarness(t)
	h.uc.engine = admitAll{}
	for i, hour := range []int{9, 11, 13, 15} {
		h.seed(int64(100+i), at(20, hour, 0))
	}

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*Response, 2)
		errs    = make([]error, 2)
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = h.uc.Execute(context.Background(), request(int64(10+i), at(20, 17, 0)))
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		if results[i].Success {
			winners++
			continue
		}
		assert.Equal(t, domain.ReasonSlotConflict, results[i].Reason)
	}

	assert.Equal(t, 1, winners)
	active, err := h.store.Count(context.Background(), domain.AppointmentFilter{}.ForDate(at(20, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, 5, active)
}

type failingTx struct {
	err error
}

func (f failingTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return f.err
}

func TestAttemptBooking_SerializationFailureIsSlotConflict(t *testing.T) {
	h := newHarness(t)
	h.uc.txManager = failingTx{err: fmt.Errorf("%w: %w", txmanager.ErrCommitTx, &pq.Error{Code: "40001"})}

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 11, 0)))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonSlotConflict, resp.Reason)
	assert.Empty(t, h.emitter.events)
}

func TestAttemptBooking_PersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.uc.txManager = failingTx{err: fmt.Errorf("%w: connection reset", txmanager.ErrCommitTx)}

	resp, err := h.uc.Execute(context.Background(), request(10, at(20, 11, 0)))

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestAttemptBooking_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{"missing client", func(r *Request) { r.ClientID = 0 }, ErrInvalidInput},
		{"missing start", func(r *Request) { r.StartAt = time.Time{} }, ErrInvalidInput},
		{"off grid start", func(r *Request) { r.StartAt = at(20, 11, 15) }, ErrInvalidTimeSlot},
		{"ends after close", func(r *Request) { r.StartAt = at(20, 19, 0) }, ErrInvalidTimeSlot},
		{"before open", func(r *Request) { r.StartAt = at(20, 8, 30) }, ErrInvalidTimeSlot},
		{"beyond horizon", func(r *Request) { r.StartAt = at(20, 11, 0).AddDate(2, 0, 0) }, ErrDateTooFarInFuture},
		{"unknown service", func(r *Request) { r.ServiceID = 42 }, ErrServiceNotFound},
		{"inactive service", func(r *Request) { r.ServiceID = inactive.ID }, ErrServiceNotFound},
		{"incomplete customer", func(r *Request) { r.Customer = domain.CustomerProfile{FirstName: "Ann"} }, ErrInvalidCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := request(10, at(20, 11, 0))
			tt.mutate(req)

			resp, err := h.uc.Execute(context.Background(), req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, h.store.All())
		})
	}
}
