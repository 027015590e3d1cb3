package get_base_rate

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
)

type RateService interface {
	GetRateAt(ctx context.Context, courtID int64, at time.Time) (*models.RateRecordResponse, error)
}

// Clock источник текущего времени для at по умолчанию
type Clock interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
