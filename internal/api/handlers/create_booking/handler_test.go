package create_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	createBooking "github.com/pawdesk/PCS-BookingService/internal/usecase/create_booking"
)

type fakeUseCase struct {
	req  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(uc *fakeUseCase, body string) *httptest.ResponseRecorder {
	handler := NewHandler(uc, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "10")

	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(handler.Handle)).ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	okResponse := &createBooking.Response{
		ID:          1,
		Reference:   "b7a3e6f0-0000-0000-0000-000000000001",
		ResourceID:  "groomer-1",
		CustomerID:  10,
		PetID:       7,
		Start:       start,
		End:         start.Add(time.Hour),
		Price:       1500,
		Status:      "pending",
		ServiceName: "Полный груминг",
	}

	t.Run("creates booking", func(t *testing.T) {
		uc := &fakeUseCase{resp: okResponse}

		rec := doRequest(uc, `{"resourceId": "groomer-1", "petId": 7, "start": "2026-03-10T10:00:00Z"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)

		// ID клиента берётся из заголовка, а не из тела
		require.NotNil(t, uc.req)
		assert.Equal(t, int64(10), uc.req.CustomerID)
		assert.Equal(t, "groomer-1", uc.req.ResourceID)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, okResponse.Reference, resp.BookingID)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(&fakeUseCase{resp: okResponse}, `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad time format", func(t *testing.T) {
		rec := doRequest(&fakeUseCase{resp: okResponse},
			`{"resourceId": "groomer-1", "petId": 7, "start": "10.03.2026 10:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("status mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code int
		}{
			{"overlap", createBooking.ErrOverlap, http.StatusConflict},
			{"capacity exceeded", createBooking.ErrCapacityExceeded, http.StatusConflict},
			{"unavailable", createBooking.ErrUnavailable, http.StatusServiceUnavailable},
			{"resource not found", createBooking.ErrResourceNotFound, http.StatusNotFound},
			{"window in the past", createBooking.ErrInvalidDate, http.StatusBadRequest},
			{"invalid window", createBooking.ErrInvalidWindow, http.StatusBadRequest},
			{"invalid input", createBooking.ErrInvalidInput, http.StatusBadRequest},
			{"internal", createBooking.ErrInternal, http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(&fakeUseCase{err: tt.err},
					`{"resourceId": "groomer-1", "petId": 7, "start": "2026-03-10T10:00:00Z"}`)
				assert.Equal(t, tt.code, rec.Code)
			})
		}
	})

	t.Run("missing user header", func(t *testing.T) {
		handler := NewHandler(&fakeUseCase{resp: okResponse}, nopLogger{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings",
			bytes.NewBufferString(`{"resourceId": "groomer-1", "petId": 7, "start": "2026-03-10T10:00:00Z"}`))
		rec := httptest.NewRecorder()
		middleware.Auth(http.HandlerFunc(handler.Handle)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
