package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	rescheduleBooking "github.com/pawdesk/PCS-BookingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается ISO 8601"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "бронирование не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidState       = "перенос из текущего статуса невозможен"
	msgResourceNotFound   = "ресурс не найден"
	msgOverlap            = "новое окно пересекается с существующим бронированием"
	msgCapacityExceeded   = "ёмкость ресурса на новое окно исчерпана"
	msgUnavailable        = "ресурс временно недоступен, повторите запрос"
	msgInvalidDate        = "новое окно в прошлом"
	msgInvalidWindow      = "некорректное временное окно"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID, userID, middleware.GetActorRole(r.Context()))
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrInvalidState):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid state: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgInvalidState)

		case errors.Is(err, rescheduleBooking.ErrResourceNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Resource not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, rescheduleBooking.ErrOverlap):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Window overlap: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgOverlap)

		case errors.Is(err, rescheduleBooking.ErrCapacityExceeded):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Capacity exceeded: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, rescheduleBooking.ErrUnavailable):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Resource unavailable: booking_id=%d", bookingID)
			handlers.RespondUnavailable(w, msgUnavailable)

		case errors.Is(err, rescheduleBooking.ErrInvalidDate):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Window in the past: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, rescheduleBooking.ErrInvalidWindow), errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, user_id=%d",
		bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
