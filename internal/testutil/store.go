package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// Store in-memory хранилище записей с семантикой PostgreSQL репозитория:
// активные записи одного исполнителя не могут пересекаться (аналог EXCLUDE constraint)
type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*domain.Appointment

	txMu sync.Mutex
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{rows: make(map[int64]*domain.Appointment)}
}

// Seed добавляет записи в обход проверок
func (s *Store) Seed(appointments ...*domain.Appointment) []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Appointment, 0, len(appointments))
	for _, a := range appointments {
		result = append(result, s.insertLocked(a))
	}
	return result
}

// All возвращает все записи в порядке создания
func (s *Store) All() []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Appointment, 0, len(s.rows))
	for _, a := range s.rows {
		result = append(result, clone(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.IsActive() {
		for _, existing := range s.rows {
			if existing.ProviderID != a.ProviderID || !existing.IsActive() {
				continue
			}
			if a.StartAt.Before(existing.EndAt()) && existing.StartAt.Before(a.EndAt()) {
				return nil, appointmentRepo.ErrSlotConflict
			}
		}
	}

	return s.insertLocked(a), nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	return clone(a), nil
}

func (s *Store) GetByReference(_ context.Context, ref uuid.UUID) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.rows {
		if a.Reference == ref {
			return clone(a), nil
		}
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (s *Store) GetByReferenceForUpdate(ctx context.Context, ref uuid.UUID) (*domain.Appointment, error) {
	return s.GetByReference(ctx, ref)
}

func (s *Store) List(_ context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Appointment, 0)
	for _, a := range s.rows {
		if filter.Matches(a) {
			result = append(result, clone(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (s *Store) Count(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	list, err := s.List(ctx, filter)
	return len(list), err
}

func (s *Store) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.rows[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}

	a.Status = status
	a.UpdatedAt = change.At
	if status == domain.StatusCancelled {
		at := change.At
		a.CancellationReason = change.Reason
		a.CancelledBy = change.Actor
		a.CancelledAt = &at
	}
	return nil
}

// LockScope транзакции уже сериализованы TxManager
func (s *Store) LockScope(context.Context, ...string) error {
	return nil
}

func (s *Store) insertLocked(a *domain.Appointment) *domain.Appointment {
	s.nextID++
	row := clone(a)
	row.ID = s.nextID
	if row.Reference == uuid.Nil {
		row.Reference = uuid.New()
	}
	if row.BookingDate.IsZero() {
		row.BookingDate = domain.DateOnly(row.StartAt)
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
		row.UpdatedAt = row.CreatedAt
	}
	s.rows[row.ID] = row
	return clone(row)
}

func (s *Store) snapshot() map[int64]*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[int64]*domain.Appointment, len(s.rows))
	for id, a := range s.rows {
		snap[id] = clone(a)
	}
	return snap
}

func (s *Store) restore(snap map[int64]*domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = snap
}

func clone(a *domain.Appointment) *domain.Appointment {
	c := *a
	return &c
}

type txKey struct{}

// TxManager сериализует транзакции хранилища и откатывает изменения при ошибке
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций поверх хранилища
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}
