package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrRedis возвращается при ошибке обращения к Redis
	ErrRedis = errors.New("subscriptions: redis error")
)

const keyPrefix = "appointments:availability:subscribers"

// Registry реестр заинтересованных в доступности даты клиентов
// Хранит множество chat id на пару (исполнитель, дата) с TTL
type Registry struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRegistry создает реестр подписчиков
func NewRegistry(rdb *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Registry{rdb: rdb, ttl: ttl}
}

// Key возвращает ключ множества подписчиков
func Key(providerID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, providerID, date.Format(domain.DateFormat))
}

// Subscribe добавляет клиента в список заинтересованных и продлевает TTL
func (r *Registry) Subscribe(ctx context.Context, providerID int64, date time.Time, clientID int64) error {
	key := Key(providerID, date)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, clientID)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: Subscribe key=%s: %v", ErrRedis, key, err)
	}

	return nil
}

// Unsubscribe удаляет клиента из списка
func (r *Registry) Unsubscribe(ctx context.Context, providerID int64, date time.Time, clientID int64) error {
	key := Key(providerID, date)

	if err := r.rdb.SRem(ctx, key, clientID).Err(); err != nil {
		return fmt.Errorf("%w: Unsubscribe key=%s: %v", ErrRedis, key, err)
	}

	return nil
}

// Subscribers возвращает chat id подписчиков даты
func (r *Registry) Subscribers(ctx context.Context, providerID int64, date time.Time) ([]int64, error) {
	key := Key(providerID, date)

	members, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Subscribers key=%s: %v", ErrRedis, key, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
