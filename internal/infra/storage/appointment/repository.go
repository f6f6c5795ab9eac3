package appointment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	tableName = "appointments"

	advisoryLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"
)

var selectColumns = []string{
	"id",
	"reference",
	"client_id",
	"provider_id",
	"service_id",
	"start_at",
	"booking_date",
	"duration_minutes",
	"status",
	"service_name",
	"lead_time_class",
	"customer",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую запись
// Если в контексте есть транзакция, использует её.
// Пересечение с активной записью того же исполнителя дополнительно запрещено
// ограничением EXCLUDE в схеме; его нарушение возвращается как ErrSlotConflict
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if a.Reference == uuid.Nil {
		a.Reference = uuid.New()
	}

	customer, err := json.Marshal(a.Customer)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal customer: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"reference",
			"client_id",
			"provider_id",
			"service_id",
			"start_at",
			"end_at",
			"booking_date",
			"duration_minutes",
			"status",
			"service_name",
			"lead_time_class",
			"customer",
		).
		Values(
			a.Reference,
			a.ClientID,
			a.ProviderID,
			a.ServiceID,
			a.StartAt,
			a.EndAt(),
			a.BookingDate,
			a.DurationMinutes,
			a.Status,
			a.ServiceName,
			a.LeadTimeClass,
			customer,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("%w: Create - %v", ErrSlotConflict, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return a, nil
}

// GetByID получает запись по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// GetByReference получает запись по внешнему идентификатору
func (r *Repository) GetByReference(ctx context.Context, ref uuid.UUID) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByReference", squirrel.Eq{"reference": ref}, false)
}

// GetByReferenceForUpdate получает запись с блокировкой строки до конца транзакции
func (r *Repository) GetByReferenceForUpdate(ctx context.Context, ref uuid.UUID) (*domain.Appointment, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, fmt.Errorf("%w: GetByReferenceForUpdate", ErrTransaction)
	}
	return r.getOne(ctx, "GetByReferenceForUpdate", squirrel.Eq{"reference": ref}, true)
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer, forUpdate bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, op, err)
	}

	return a, nil
}

// List получает записи по фильтру
// Для одной даты сортирует по времени начала (ASC), иначе сначала новые.
// Внутри транзакции выборка по исполнителю на одну дату блокирует строки (FOR UPDATE)
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := applyFilter(psqlbuilder.Select(selectColumns...).From(tableName), filter)

	if filter.IsSingleDate() {
		selectBuilder = selectBuilder.OrderBy("start_at ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("start_at DESC")
	}

	if dbmetrics.IsInTransaction(ctx) && filter.ProviderID != nil && filter.IsSingleDate() {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if IsConflict(err) {
			return nil, fmt.Errorf("%w: List - %v", ErrSlotConflict, err)
		}
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Count считает записи по фильтру; используется для вместимости дня и лимита клиента
func (r *Repository) Count(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select("COUNT(*)").From(tableName), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		if IsConflict(err) {
			return 0, fmt.Errorf("%w: Count - %v", ErrSlotConflict, err)
		}
		return 0, fmt.Errorf("%w: Count - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateStatus меняет статус записи и сохраняет метаданные перехода
// Для отмены заполняются cancellation_reason, cancelled_by, cancelled_at
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, change domain.StatusChange) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName).
		Set("status", status).
		Set("updated_at", change.At).
		Where(squirrel.Eq{"id": id})

	if status == domain.StatusCancelled {
		updateBuilder = updateBuilder.
			Set("cancellation_reason", change.Reason).
			Set("cancelled_by", change.Actor).
			Set("cancelled_at", change.At)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: UpdateStatus - %v", ErrSlotConflict, err)
		}
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// LockScope берёт транзакционные advisory-блокировки по ключам
// Ключи сортируются, чтобы конкурентные транзакции брали их в одном порядке.
// Блокировки снимаются автоматически при завершении транзакции
func (r *Repository) LockScope(ctx context.Context, keys ...string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockScope", ErrTransaction)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	for _, key := range sorted {
		if _, err := executor.ExecContext(ctx, advisoryLockQuery, key); err != nil {
			if IsConflict(err) {
				return fmt.Errorf("%w: LockScope - %v", ErrSlotConflict, err)
			}
			return fmt.Errorf("%w: LockScope key=%s: %v", ErrExecQuery, key, err)
		}
	}

	return nil
}

func applyFilter(b squirrel.SelectBuilder, filter domain.AppointmentFilter) squirrel.SelectBuilder {
	if filter.ProviderID != nil {
		b = b.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if filter.ClientID != nil {
		b = b.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.DateFrom != nil {
		b = b.Where(squirrel.GtOrEq{"booking_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		b = b.Where(squirrel.LtOrEq{"booking_date": *filter.DateTo})
	}
	if filter.StartsFrom != nil {
		b = b.Where(squirrel.GtOrEq{"start_at": *filter.StartsFrom})
	}
	if filter.LeadTimeClass != nil {
		b = b.Where(squirrel.Eq{"lead_time_class": *filter.LeadTimeClass})
	}

	if statuses := filter.StatusSet(); statuses != nil {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		b = b.Where(squirrel.Eq{"status": values})
	}

	return b
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		a                    domain.Appointment
		customer             []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.Reference,
		&a.ClientID,
		&a.ProviderID,
		&a.ServiceID,
		&a.StartAt,
		&a.BookingDate,
		&a.DurationMinutes,
		&a.Status,
		&a.ServiceName,
		&a.LeadTimeClass,
		&customer,
		&a.CancellationReason,
		&a.CancelledBy,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(customer) > 0 {
		if err := json.Unmarshal(customer, &a.Customer); err != nil {
			return nil, fmt.Errorf("unmarshal customer: %w", err)
		}
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
