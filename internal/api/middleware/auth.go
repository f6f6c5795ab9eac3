package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"

	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
	msgInvalidRole   = "некорректная роль пользователя"
	msgAdminOnly     = "операция доступна только администратору"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	actorKey  contextKey = "actor"
)

// Auth извлекает пользователя из заголовков X-User-ID и X-User-Role
// Аутентификация выполняется шлюзом; сервис доверяет заголовкам.
// Без X-User-Role пользователь считается клиентом
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		actor := domain.ActorClient
		if role := r.Header.Get(HeaderRole); role != "" {
			actor = domain.Actor(role)
			if actor != domain.ActorClient && actor != domain.ActorAdmin {
				handlers.RespondForbidden(w, msgInvalidRole)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly пропускает только администраторов; используется после Auth
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, _ := GetActor(r.Context()); actor != domain.ActorAdmin {
			handlers.RespondForbidden(w, msgAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetActor возвращает роль пользователя из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// WithUser кладёт пользователя в контекст (используется в тестах обработчиков)
func WithUser(ctx context.Context, userID int64, actor domain.Actor) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, actorKey, actor)
}
