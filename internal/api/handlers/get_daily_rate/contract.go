package get_daily_rate

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
)

type RateService interface {
	GetDailyOverride(ctx context.Context, courtID int64, date string) (*models.DailyOverrideResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
