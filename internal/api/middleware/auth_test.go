package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
)

func callAuth(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, int64, string, bool) {
	t.Helper()

	var (
		userID int64
		role   string
		called bool
	)

	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		userID, _ = GetUserID(r.Context())
		role = GetActorRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, userID, role, called
}

func TestAuth(t *testing.T) {
	t.Run("valid user id with default role", func(t *testing.T) {
		rec, userID, role, called := callAuth(t, map[string]string{"X-User-ID": "42"})

		require.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(42), userID)
		assert.Equal(t, domain.ActorRoleCustomer, role)
	})

	t.Run("staff role accepted", func(t *testing.T) {
		_, _, role, called := callAuth(t, map[string]string{
			"X-User-ID":    "42",
			"X-Actor-Role": "staff",
		})

		require.True(t, called)
		assert.Equal(t, domain.ActorRoleStaff, role)
	})

	t.Run("missing user id", func(t *testing.T) {
		rec, _, _, called := callAuth(t, nil)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-numeric user id", func(t *testing.T) {
		rec, _, _, called := callAuth(t, map[string]string{"X-User-ID": "abc"})

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-positive user id", func(t *testing.T) {
		rec, _, _, called := callAuth(t, map[string]string{"X-User-ID": "0"})

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		rec, _, _, called := callAuth(t, map[string]string{
			"X-User-ID":    "42",
			"X-Actor-Role": "admin",
		})

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
