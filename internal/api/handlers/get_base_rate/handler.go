package get_base_rate

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgInvalidAt      = "некорректный параметр at, ожидается RFC3339"
	msgCourtNotFound  = "корт не найден"
	msgRateNotFound   = "на этот момент тариф не действовал"
)

type Handler struct {
	service RateService
	clock   Clock
	logger  Logger
}

func NewHandler(service RateService, clock Clock, logger Logger) *Handler {
	return &Handler{
		service: service,
		clock:   clock,
		logger:  logger,
	}
}

// Handle GET /api/v1/courts/{courtId}/base-rate
// Query params: at (опционально, RFC3339; по умолчанию сейчас)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.CourtIDFromPath(r)
	if err != nil {
		h.logger.Warn("GET /courts/{id}/base-rate - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	at, err := parseAt(r.URL.Query().Get("at"), h.clock.Now())
	if err != nil {
		h.logger.Warn("GET /courts/{id}/base-rate - Invalid at: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAt)
		return
	}

	result, err := h.service.GetRateAt(r.Context(), courtID, at)
	if err != nil {
		switch {
		case errors.Is(err, rates.ErrCourtNotFound):
			h.logger.Warn("GET /courts/{id}/base-rate - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, rates.ErrRateNotFound):
			h.logger.Info("GET /courts/{id}/base-rate - No rate in effect: court_id=%d, at=%s", courtID, at)
			handlers.RespondNotFound(w, msgRateNotFound)

		default:
			h.logger.Error("GET /courts/{id}/base-rate - Failed to get rate: court_id=%d, error=%v", courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/base-rate - Rate retrieved successfully: court_id=%d, record_id=%s",
		courtID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
