package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	actorRoleKey contextKey = "actorRole"
)

const (
	headerUserID    = "X-User-ID"
	headerActorRole = "X-Actor-Role"
)

// Auth извлекает пользователя из заголовков запроса
//
// X-User-ID обязателен, X-Actor-Role опционален (по умолчанию customer).
// Заголовки проставляет API gateway после аутентификации, сам сервис
// токены не проверяет
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(headerUserID)
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		role := r.Header.Get(headerActorRole)
		switch role {
		case "":
			role = domain.ActorRoleCustomer
		case domain.ActorRoleCustomer, domain.ActorRoleStaff:
			// допустимые роли
		default:
			handlers.RespondUnauthorized(w, "некорректный заголовок X-Actor-Role")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, actorRoleKey, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetActorRole возвращает роль пользователя из контекста
func GetActorRole(ctx context.Context) string {
	role, ok := ctx.Value(actorRoleKey).(string)
	if !ok {
		return domain.ActorRoleCustomer
	}
	return role
}
