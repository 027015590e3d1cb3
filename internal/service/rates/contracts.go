package rates

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// RateRepository интерфейс истории тарифов и дневных переопределений
type RateRepository interface {
	GetAt(ctx context.Context, courtID int64, at time.Time) (*domain.RateHistoryRecord, error)
	ListHistory(ctx context.Context, courtID int64, limit int) ([]*domain.RateHistoryRecord, error)
	GetDailyOverride(ctx context.Context, courtID int64, date string) (*domain.DailyRateOverride, error)
}

// CourtRepository интерфейс каталога кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// TransactionManager согласованное чтение нескольких таблиц
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
