package get_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pawdesk/PCS-BookingService/internal/api/handlers"
	getAvailability "github.com/pawdesk/PCS-BookingService/internal/usecase/get_availability"
)

const (
	msgInvalidFrom      = "некорректный параметр from, ожидается ISO 8601 или YYYY-MM-DD"
	msgInvalidTo        = "некорректный параметр to, ожидается ISO 8601 или YYYY-MM-DD"
	msgMissingRange     = "параметры from и to обязательны"
	msgInvalidRange     = "некорректный диапазон дат"
	msgResourceNotFound = "ресурс не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/availability?from=...&to=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resourceID := vars["resourceId"]

	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		h.logger.Warn("GET /resources/{id}/availability - Missing range: resource=%s", resourceID)
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	from, err := parseTimeParam(fromStr)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/availability - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFrom)
		return
	}

	to, err := parseTimeParam(toStr)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/availability - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTo)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		ResourceID: resourceID,
		From:       from,
		To:         to,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrResourceNotFound):
			h.logger.Warn("GET /resources/{id}/availability - Resource not found: resource=%s", resourceID)
			handlers.RespondNotFound(w, msgResourceNotFound)

		case errors.Is(err, getAvailability.ErrInvalidRange), errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /resources/{id}/availability - Invalid range: resource=%s, error=%v", resourceID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /resources/{id}/availability - Failed: resource=%s, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /resources/{id}/availability - %d slots returned: resource=%s", len(result.Slots), resourceID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
