package cancel_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Policy правила отмены
type Policy struct {
	// GraceWindow минимальное время до начала, после которого
	// пользователь и контакт уже не могут отменить бронирование
	GraceWindow time.Duration

	// AllowInsideGrace снимает ограничение GraceWindow
	AllowInsideGrace bool

	// Idempotent: повторная отмена возвращает бронирование без изменений, иначе конфликт
	Idempotent bool
}

// DefaultPolicy окно 120 минут, повторная отмена идемпотентна
func DefaultPolicy() Policy {
	return Policy{
		GraceWindow: domain.DefaultGraceMinutes * time.Minute,
		Idempotent:  true,
	}
}

// Decision итог проверки политики отмены
type Decision int

const (
	// DecisionCancel бронирование нужно отменить
	DecisionCancel Decision = iota
	// DecisionAlreadyCancelled бронирование уже отменено, изменений нет
	DecisionAlreadyCancelled
)

// Authorize решает, может ли актор отменить бронирование в момент now.
// Порядок: личность актора, повторная отмена, окно отмены.
// contactPhone - телефон контакта бронирования, нужен только для wa-актора.
func Authorize(actor domain.Actor, booking *domain.Booking, contactPhone *string, now time.Time, policy Policy) (Decision, error) {
	if err := authorizeIdentity(actor, booking, contactPhone); err != nil {
		return DecisionCancel, err
	}
	if booking.IsCancelled() {
		return policy.alreadyCancelled()
	}
	if err := checkGrace(actor, booking, now, policy); err != nil {
		return DecisionCancel, err
	}
	return DecisionCancel, nil
}

// alreadyCancelled исход повторной отмены по флагу Idempotent
func (p Policy) alreadyCancelled() (Decision, error) {
	if !p.Idempotent {
		return DecisionCancel, ErrAlreadyCancelled
	}
	return DecisionAlreadyCancelled, nil
}

// authorizeIdentity проверяет, что актор имеет отношение к бронированию
func authorizeIdentity(actor domain.Actor, booking *domain.Booking, contactPhone *string) error {
	switch a := actor.(type) {
	case domain.AdminActor:
		return nil
	case domain.UserActor:
		if booking.UserID != nil && *booking.UserID == a.ID {
			return nil
		}
		return ErrAccessDenied
	case domain.WhatsAppActor:
		if contactPhone == nil {
			return ErrAccessDenied
		}
		phone := domain.NormalizePhone(*contactPhone)
		if phone != "" && phone == domain.NormalizePhone(a.Phone) {
			return nil
		}
		return ErrAccessDenied
	default:
		return ErrAccessDenied
	}
}

// checkGrace запрещает отмену не-администратором внутри окна перед началом
func checkGrace(actor domain.Actor, booking *domain.Booking, now time.Time, policy Policy) error {
	if _, ok := actor.(domain.AdminActor); ok {
		return nil
	}
	if policy.AllowInsideGrace {
		return nil
	}
	if booking.StartTime.Sub(now) < policy.GraceWindow {
		return ErrTooLateToCancel
	}
	return nil
}
