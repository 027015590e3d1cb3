package change_base_rate

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	changeBaseRate "github.com/m04kA/SMC-CourtBookingService/internal/usecase/change_base_rate"
)

const (
	msgInvalidCourtID     = "некорректный ID корта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingPrices      = "amPrice и pmPrice обязательны"
	msgNegativePrice      = "цена не может быть отрицательной"
	msgInvalidCutoff      = "некорректное время cutoff, ожидается HH:MM"
	msgInvalidData        = "некорректные данные тарифа"
	msgCourtNotFound      = "корт не найден"
	msgConcurrentChange   = "тариф изменён параллельно, повторите запрос"
)

type Handler struct {
	useCase ChangeBaseRateUseCase
	logger  Logger
}

func NewHandler(useCase ChangeBaseRateUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/courts/{courtId}/base-rate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.CourtIDFromPath(r)
	if err != nil {
		h.logger.Warn("POST /courts/{id}/base-rate - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	var req ChangeBaseRateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /courts/{id}/base-rate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if !req.Complete() {
		h.logger.Warn("POST /courts/{id}/base-rate - Missing prices: court_id=%d", courtID)
		handlers.RespondBadRequest(w, msgMissingPrices)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(courtID))
	if err != nil {
		switch {
		case errors.Is(err, changeBaseRate.ErrCourtNotFound):
			h.logger.Warn("POST /courts/{id}/base-rate - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, changeBaseRate.ErrNegativePrice):
			h.logger.Warn("POST /courts/{id}/base-rate - Negative price: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgNegativePrice)

		case errors.Is(err, changeBaseRate.ErrInvalidCutoff):
			h.logger.Warn("POST /courts/{id}/base-rate - Invalid cutoff: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgInvalidCutoff)

		case errors.Is(err, changeBaseRate.ErrInvalidInput):
			h.logger.Warn("POST /courts/{id}/base-rate - Invalid data: court_id=%d, error=%v", courtID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, changeBaseRate.ErrConcurrentChange):
			h.logger.Warn("POST /courts/{id}/base-rate - Concurrent change: court_id=%d", courtID)
			handlers.RespondConflict(w, msgConcurrentChange)

		default:
			h.logger.Error("POST /courts/{id}/base-rate - Failed to change rate: court_id=%d, error=%v",
				courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /courts/{id}/base-rate - Rate changed successfully: court_id=%d, record_id=%s",
		courtID, result.Record.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
