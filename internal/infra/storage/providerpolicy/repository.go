package providerpolicy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий переопределений политики бронирования исполнителей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает переопределения исполнителя
// Если строки нет, возвращает ErrPolicyNotFound: действуют значения из конфигурации
func (r *Repository) Get(ctx context.Context, providerID int64) (*domain.ProviderPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"provider_id",
		"daily_capacity",
		"client_cap",
		"lead_time_threshold",
		"open_time",
		"close_time",
		"created_at",
		"updated_at",
	).
		From("provider_policies").
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.ProviderPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ProviderID,
		&p.DailyCapacity,
		&p.ClientCap,
		&p.LeadTimeThreshold,
		&p.OpenTime,
		&p.CloseTime,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan policy: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создает или полностью заменяет переопределения исполнителя
func (r *Repository) Upsert(ctx context.Context, p *domain.ProviderPolicy) (*domain.ProviderPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("provider_policies").
		Columns(
			"provider_id",
			"daily_capacity",
			"client_cap",
			"lead_time_threshold",
			"open_time",
			"close_time",
		).
		Values(
			p.ProviderID,
			p.DailyCapacity,
			p.ClientCap,
			p.LeadTimeThreshold,
			p.OpenTime,
			p.CloseTime,
		).
		Suffix(`ON CONFLICT (provider_id) DO UPDATE SET
			daily_capacity = EXCLUDED.daily_capacity,
			client_cap = EXCLUDED.client_cap,
			lead_time_threshold = EXCLUDED.lead_time_threshold,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}
