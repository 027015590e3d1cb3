package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tracing"
)

var tracer = tracing.Tracer("usecase/cancel_booking")

// UseCase use case для отмены бронирования
type UseCase struct {
	bookingRepo BookingRepository
	txManager   TransactionManager
	publisher   EventPublisher
	clock       Clock
	policy      Policy
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	clock Clock,
	policy Policy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		txManager:   txManager,
		publisher:   publisher,
		clock:       clock,
		policy:      policy,
		logger:      logger,
	}
}

// Execute выполняет use case отмены бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "CancelBooking")
	defer span.End()
	span.SetAttributes(attribute.String("booking.id", req.BookingID))

	uc.logger.Info("CancelBooking: booking=%s actor=%q", req.BookingID, req.Actor)

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !resp.AlreadyCancelled {
		if err := uc.publisher.Publish(ctx, events.KeyBookingCancelled, events.NewBookingEvent(resp.Booking, uc.clock.Now())); err != nil {
			uc.logger.Warn("CancelBooking: failed to publish %s: %v", events.KeyBookingCancelled, err)
		}
	}
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if strings.TrimSpace(req.BookingID) == "" {
		return nil, fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}
	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var resp *Response

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Получаем бронирование с блокировкой строки
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%s not found", req.BookingID)
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 3. Разбираем актора; нераспознанный тег не проходит авторизацию
		actor, err := domain.ParseActor(req.Actor)
		if err != nil {
			uc.logger.Warn("CancelBooking: rejected actor %q: %v", req.Actor, err)
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}

		// 4. Телефон контакта нужен только для wa-актора
		var contactPhone *string
		if _, ok := actor.(domain.WhatsAppActor); ok {
			contactPhone, err = uc.bookingRepo.GetContactPhone(txCtx, booking.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to get contact phone: %w", ErrInternal, err)
			}
		}

		// 5. Политика: личность, повторная отмена, окно отмены
		now := uc.clock.Now()
		decision, err := Authorize(actor, booking, contactPhone, now, uc.policy)
		switch {
		case errors.Is(err, ErrAccessDenied):
			uc.logger.Warn("CancelBooking: actor %s may not cancel booking id=%s", actor.Tag(), booking.ID)
			return err
		case errors.Is(err, ErrTooLateToCancel):
			uc.logger.Warn("CancelBooking: booking id=%s starts at %s, inside grace window %s",
				booking.ID, booking.StartTime.Format("2006-01-02 15:04 MST"), uc.policy.GraceWindow)
			return err
		case err != nil:
			return err
		}
		if decision == DecisionAlreadyCancelled {
			resp = &Response{Booking: booking, AlreadyCancelled: true}
			return nil
		}

		// 6. Отменяем
		cancelled, err := uc.bookingRepo.Cancel(txCtx, booking.ID, req.Reason, actor.Tag(), now)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrAlreadyCancelled) {
				current, getErr := uc.bookingRepo.GetByID(txCtx, booking.ID)
				if getErr != nil {
					return fmt.Errorf("%w: failed to reload booking: %w", ErrInternal, getErr)
				}
				// Отменено конкурентно: решение принимает та же политика
				decision, err := Authorize(actor, current, contactPhone, now, uc.policy)
				if err != nil {
					return err
				}
				resp = &Response{Booking: current, AlreadyCancelled: decision == DecisionAlreadyCancelled}
				return nil
			}
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to cancel booking: %w", ErrInternal, err)
		}

		resp = &Response{Booking: cancelled}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("CancelBooking: %v", err)
		}
		return nil, err
	}

	if resp.AlreadyCancelled {
		uc.logger.Info("CancelBooking: booking id=%s was already cancelled", resp.Booking.ID)
	} else {
		uc.logger.Info("CancelBooking: successfully cancelled booking id=%s", resp.Booking.ID)
	}
	return resp, nil
}
