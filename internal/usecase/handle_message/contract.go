package handle_message

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// SessionStore хранилище сессий диалога по телефону
type SessionStore interface {
	Get(ctx context.Context, phone string) (*domain.Session, error)
	Set(ctx context.Context, phone string, sess *domain.Session) error
	Delete(ctx context.Context, phone string) error
}

// ContactDirectory справочник контактов
type ContactDirectory interface {
	FindOrCreateByPhone(ctx context.Context, phone string, displayName *string, timezone string) (*domain.Contact, error)
}

// BookingReader чтение бронирований контакта
type BookingReader interface {
	GetUpcomingByContact(ctx context.Context, contactID string, from time.Time, limit int) ([]*domain.Booking, error)
}

// SlotLister список свободных слотов корта на дату
type SlotLister interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// BookingCreator создание бронирования
type BookingCreator interface {
	Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error)
}

// BookingCanceller отмена бронирования
type BookingCanceller interface {
	Execute(ctx context.Context, req *cancel_booking.Request) (*cancel_booking.Response, error)
}

// Gateway исходящие сообщения: текст и кнопки
type Gateway interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, body string, buttons []domain.Button) error
}

// ListSender необязательная возможность шлюза отправлять списки
type ListSender interface {
	SendList(ctx context.Context, to string, list domain.ListMessage) error
}

// PhoneLocker сериализует обработку сообщений одного телефона
type PhoneLocker interface {
	Lock(phone string) (unlock func())
}

// Clock календарь клуба
type Clock interface {
	Now() time.Time
	Today() string
	Tomorrow() string
	IsPast(date string) bool
	ToInstant(date string, hhmm types.TimeString) (time.Time, error)
	DateOf(t time.Time) string
	TimeOf(t time.Time) types.TimeString
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
