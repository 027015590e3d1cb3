package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockCourt(ctx context.Context, courtID int64) error
	FindActiveOverlap(ctx context.Context, courtID int64, start, end time.Time) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

// CourtRepository интерфейс каталога кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// PriceResolver рассчитывает снимок цены
type PriceResolver interface {
	ResolveForCourt(ctx context.Context, court *domain.Court, date string, start, end time.Time) (domain.PriceSnapshot, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CourtLocker внутрипроцессная блокировка по корту
type CourtLocker interface {
	Lock(courtID int64) (unlock func())
}

// EventPublisher публикует события после коммита
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Clock часы в часовом поясе клуба
type Clock interface {
	Now() time.Time
	DateOf(t time.Time) string
	IsPast(date string) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
