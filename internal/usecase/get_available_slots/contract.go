package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByCourtWithFilter(ctx context.Context, filter domain.CourtBookingsFilter) ([]*domain.Booking, error)
}

// CourtRepository интерфейс каталога кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// Clock часы в часовом поясе клуба
type Clock interface {
	Now() time.Time
	Today() string
	IsPast(date string) bool
	ToInstant(date string, hhmm types.TimeString) (time.Time, error)
	DayBounds(date string) (time.Time, time.Time, error)
}

// BookingLookup возвращает занятые интервалы корта, пересекающие [from, to)
type BookingLookup func(ctx context.Context, from, to time.Time) ([]domain.Interval, error)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
