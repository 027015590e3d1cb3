package get_daily_rate

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates"
)

const (
	msgInvalidCourtID   = "некорректный ID корта"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgCourtNotFound    = "корт не найден"
	msgOverrideNotFound = "на эту дату нет специального тарифа"
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

// Handle GET /api/v1/courts/{courtId}/daily-rates/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.CourtIDFromPath(r)
	if err != nil {
		h.logger.Warn("GET /courts/{id}/daily-rates/{date} - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}
	date := mux.Vars(r)["date"]

	result, err := h.service.GetDailyOverride(r.Context(), courtID, date)
	if err != nil {
		switch {
		case errors.Is(err, rates.ErrInvalidDate):
			h.logger.Warn("GET /courts/{id}/daily-rates/{date} - Invalid date: %q", date)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, rates.ErrCourtNotFound):
			h.logger.Warn("GET /courts/{id}/daily-rates/{date} - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, rates.ErrOverrideNotFound):
			h.logger.Info("GET /courts/{id}/daily-rates/{date} - No override: court_id=%d, date=%s", courtID, date)
			handlers.RespondNotFound(w, msgOverrideNotFound)

		default:
			h.logger.Error("GET /courts/{id}/daily-rates/{date} - Failed to get override: court_id=%d, error=%v",
				courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/daily-rates/{date} - Override retrieved: court_id=%d, date=%s", courtID, date)
	handlers.RespondJSON(w, http.StatusOK, result)
}
