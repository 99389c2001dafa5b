package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings"
	"github.com/pawdesk/PCS-BookingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
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

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := actorFromContext(r)
	if !ok {
		h.logger.Warn("GET /bookings/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, actor)
	if err != nil {
		h.respondServiceError(w, "GET /bookings/{id}", bookingID, actor.UserID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, booking)
}

// HandleByReference GET /api/v1/bookings/reference/{reference}
func (h *Handler) HandleByReference(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reference := vars["reference"]

	actor, ok := actorFromContext(r)
	if !ok {
		h.logger.Warn("GET /bookings/reference/{reference} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.GetByReference(r.Context(), reference, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/reference/{reference} - Not found: reference=%s", reference)
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/reference/{reference} - Access denied: reference=%s, user_id=%d",
				reference, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)
		default:
			h.logger.Error("GET /bookings/reference/{reference} - Failed: reference=%s, error=%v", reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, booking)
}

// HandleHistory GET /api/v1/bookings/{bookingId}/history
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/history - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := actorFromContext(r)
	if !ok {
		h.logger.Warn("GET /bookings/{id}/history - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	history, err := h.service.GetHistory(r.Context(), bookingID, actor)
	if err != nil {
		h.respondServiceError(w, "GET /bookings/{id}/history", bookingID, actor.UserID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, bookingID, userID int64, err error) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("%s - Booking not found: booking_id=%d", route, bookingID)
		handlers.RespondNotFound(w, msgNotFound)
	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: booking_id=%d, user_id=%d", route, bookingID, userID)
		handlers.RespondForbidden(w, msgForbidden)
	default:
		h.logger.Error("%s - Failed: booking_id=%d, error=%v", route, bookingID, err)
		handlers.RespondInternalError(w)
	}
}

func actorFromContext(r *http.Request) (models.Actor, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return models.Actor{}, false
	}
	return models.Actor{
		UserID: userID,
		Role:   middleware.GetActorRole(r.Context()),
	}, true
}
