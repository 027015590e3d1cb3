package get_court_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgInvalidParams  = "некорректные параметры запроса"
	msgInvalidStatus  = "некорректный статус бронирования"
	msgCourtNotFound  = "корт не найден"
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

// Handle GET /api/v1/courts/{courtId}/bookings
// Query params: from, to, status, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.CourtIDFromPath(r)
	if err != nil {
		h.logger.Warn("GET /courts/{id}/bookings - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	q := r.URL.Query()
	serviceReq, err := ToServiceRequest(courtID, q.Get("from"), q.Get("to"), q.Get("status"), q.Get("includeInactive"))
	if err != nil {
		h.logger.Warn("GET /courts/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetCourtBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrCourtNotFound):
			h.logger.Warn("GET /courts/{id}/bookings - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, bookings.ErrInvalidStatus):
			h.logger.Warn("GET /courts/{id}/bookings - Invalid status: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrInvalidTimeRange):
			h.logger.Warn("GET /courts/{id}/bookings - Invalid range: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /courts/{id}/bookings - Failed to get bookings: court_id=%d, error=%v",
				courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/bookings - Bookings retrieved successfully: court_id=%d, count=%d",
		courtID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
