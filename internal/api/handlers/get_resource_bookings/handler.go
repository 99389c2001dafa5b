package get_resource_bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	"github.com/pawdesk/PCS-BookingService/internal/domain"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidFrom   = "некорректный параметр from, ожидается ISO 8601 или YYYY-MM-DD"
	msgInvalidTo     = "некорректный параметр to, ожидается ISO 8601 или YYYY-MM-DD"
	msgInvalidFilter = "некорректный фильтр"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/bookings?from=...&to=...&status=...&includeInactive=true
// Доступно только сотрудникам
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resourceID := vars["resourceId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /resources/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.GetResourceBookingsRequest{
		Actor: models.Actor{
			UserID: userID,
			Role:   middleware.GetActorRole(r.Context()),
		},
		ResourceID:      resourceID,
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := parseTimeParam(fromStr)
		if err != nil {
			h.logger.Warn("GET /resources/{id}/bookings - Invalid from: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFrom)
			return
		}
		req.From = &from
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := parseTimeParam(toStr)
		if err != nil {
			h.logger.Warn("GET /resources/{id}/bookings - Invalid to: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTo)
			return
		}
		req.To = &to
	}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetResourceBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /resources/{id}/bookings - Access denied: resource=%s, user_id=%d",
				resourceID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /resources/{id}/bookings - Invalid filter: resource=%s", resourceID)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /resources/{id}/bookings - Failed: resource=%s, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{id}/bookings - %d bookings returned: resource=%s, user_id=%d",
		len(result.Bookings), resourceID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseTimeParam парсит параметр времени: ISO 8601 или дата YYYY-MM-DD
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(domain.DateFormat, value)
}
