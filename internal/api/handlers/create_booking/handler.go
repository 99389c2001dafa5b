package create_booking

import (
	"errors"
	"net/http"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	createBooking "github.com/pawdesk/PCS-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается ISO 8601"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgResourceNotFound   = "ресурс не найден"
	msgOverlap            = "окно пересекается с существующим бронированием"
	msgCapacityExceeded   = "ёмкость ресурса на выбранное окно исчерпана"
	msgUnavailable        = "ресурс временно недоступен, повторите запрос"
	msgInvalidDate        = "окно бронирования в прошлом"
	msgInvalidWindow      = "некорректное временное окно"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrOverlap):
			h.logger.Warn("POST /bookings - Window overlap: customer_id=%d, resource=%s", customerID, req.ResourceID)
			handlers.RespondConflict(w, msgOverlap)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded: customer_id=%d, resource=%s", customerID, req.ResourceID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrUnavailable):
			h.logger.Warn("POST /bookings - Resource unavailable: customer_id=%d, resource=%s", customerID, req.ResourceID)
			handlers.RespondUnavailable(w, msgUnavailable)

		case errors.Is(err, createBooking.ErrResourceNotFound):
			h.logger.Warn("POST /bookings - Resource not found: resource=%s", req.ResourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Window in the past: customer_id=%d, resource=%s", customerID, req.ResourceID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrInvalidWindow):
			h.logger.Warn("POST /bookings - Invalid window: customer_id=%d, resource=%s", customerID, req.ResourceID)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: customer_id=%d, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, resource=%s, error=%v",
				customerID, req.ResourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created: booking_id=%s, customer_id=%d, resource=%s",
		result.Reference, customerID, req.ResourceID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
