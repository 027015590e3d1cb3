package get_rate_history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgInvalidLimit   = "некорректный limit"
	msgCourtNotFound  = "корт не найден"
)

type Handler struct {
	service RateService
	logger  Logger
}

func NewHandler(service RateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/courts/{courtId}/base-rate/history
// Query params: limit (опционально, по умолчанию 50, максимум 200)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.CourtIDFromPath(r)
	if err != nil {
		h.logger.Warn("GET /courts/{id}/base-rate/history - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.logger.Warn("GET /courts/{id}/base-rate/history - Invalid limit: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
	}

	result, err := h.service.ListHistory(r.Context(), courtID, limit)
	if err != nil {
		switch {
		case errors.Is(err, rates.ErrCourtNotFound):
			h.logger.Warn("GET /courts/{id}/base-rate/history - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		default:
			h.logger.Error("GET /courts/{id}/base-rate/history - Failed to list history: court_id=%d, error=%v",
				courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/base-rate/history - History retrieved: court_id=%d, count=%d",
		courtID, len(result.Records))
	handlers.RespondJSON(w, http.StatusOK, result)
}
