package get_rate_history

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
)

type RateService interface {
	ListHistory(ctx context.Context, courtID int64, limit int) (*models.RateHistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
