package change_base_rate

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// RateRepository интерфейс журнала базовых тарифов
type RateRepository interface {
	LockCourt(ctx context.Context, courtID int64) error
	GetOpen(ctx context.Context, courtID int64) (*domain.RateHistoryRecord, error)
	Close(ctx context.Context, id string, at time.Time) error
	Insert(ctx context.Context, rec *domain.RateHistoryRecord) (*domain.RateHistoryRecord, error)
}

// CourtRepository интерфейс репозитория кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CourtLocker взаимное исключение по корту внутри процесса
type CourtLocker interface {
	Lock(courtID int64) (unlock func())
}

// EventPublisher публикует события после коммита
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Clock источник текущего времени
type Clock interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
