package pricing

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// RateRepository источник дневных переопределений и истории тарифов
type RateRepository interface {
	GetDailyOverride(ctx context.Context, courtID int64, date string) (*domain.DailyRateOverride, error)
	GetAt(ctx context.Context, courtID int64, at time.Time) (*domain.RateHistoryRecord, error)
}

// CourtRepository каталог кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// Clock часы в часовом поясе клуба
type Clock interface {
	Now() time.Time
	MinuteOfDay(t time.Time) int
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
