package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tracing"
)

var tracer = tracing.Tracer("usecase/create_booking")

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo BookingRepository
	courtRepo   CourtRepository
	pricing     PriceResolver
	txManager   TransactionManager
	locker      CourtLocker
	publisher   EventPublisher
	clock       Clock
	logger      Logger
	newID       func() string
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	pricing PriceResolver,
	txManager TransactionManager,
	locker CourtLocker,
	publisher EventPublisher,
	clock Clock,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		pricing:     pricing,
		txManager:   txManager,
		locker:      locker,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка пересечений и вставка идут под блокировкой корта в одной сериализуемой транзакции.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer span.End()
	span.SetAttributes(attribute.Int64("court.id", req.CourtID))

	uc.logger.Info("CreateBooking: court=%d, start=%s, end=%s",
		req.CourtID, req.StartTime.Format(domain.DateFormat+" "+domain.TimeFormat), req.EndTime.Format(domain.DateFormat+" "+domain.TimeFormat))

	result, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.id", result.ID))
	uc.publish(ctx, events.KeyBookingCreated, events.NewBookingEvent(result, uc.clock.Now()))

	return &Response{Booking: result}, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	// 1. Валидация входных данных
	date, status, err := validateRequest(req, uc.clock)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем корт
	court, err := uc.courtRepo.GetByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("CreateBooking: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("CreateBooking: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	// 3. Сериализуем создание бронирований корта внутри процесса
	unlock := uc.locker.Lock(req.CourtID)
	defer unlock()

	var result *domain.Booking

	// 4. Проверка пересечений и вставка в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Блокировка корта между процессами
		if err := uc.bookingRepo.LockCourt(txCtx, req.CourtID); err != nil {
			return fmt.Errorf("%w: failed to lock court: %w", ErrInternal, err)
		}

		// 4.2. Ищем активное пересекающееся бронирование
		existing, err := uc.bookingRepo.FindActiveOverlap(txCtx, req.CourtID, req.StartTime, req.EndTime)
		if err != nil {
			return fmt.Errorf("%w: failed to check overlap: %w", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Warn("CreateBooking: court=%d interval overlaps booking id=%s", req.CourtID, existing.ID)
			return ErrSlotNotAvailable
		}

		// 4.3. Снимок цены
		price, err := uc.pricing.ResolveForCourt(txCtx, court, date, req.StartTime, req.EndTime)
		if err != nil {
			return mapPricingError(err)
		}

		// 4.4. Сохраняем бронирование
		booking := &domain.Booking{
			ID:          uc.newID(),
			CourtID:     req.CourtID,
			UserID:      req.UserID,
			ContactID:   req.ContactID,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			BookingDate: date,
			Status:      status,
			Title:       req.Title,
			Price:       price,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrOverlappingBooking) {
				return err
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		// 4.5. Бронирование из чата сразу подтверждается
		if created.Status == domain.StatusPending && req.AutoConfirm {
			if err := uc.bookingRepo.UpdateStatus(txCtx, created.ID, domain.StatusConfirmed); err != nil {
				return fmt.Errorf("%w: failed to confirm booking: %w", ErrInternal, err)
			}
			created.Status = domain.StatusConfirmed
		}

		result = created
		return nil
	})

	if err != nil {
		// Гонку проиграли на уровне БД: для вызывающего это тот же конфликт
		if errors.Is(err, bookingRepo.ErrOverlappingBooking) {
			uc.logger.Warn("CreateBooking: court=%d overlap rejected by database constraint", req.CourtID)
			return nil, ErrSlotNotAvailable
		}
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("CreateBooking: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s court=%d price=%d %s (%s)",
		result.ID, result.CourtID, result.Price.Amount, result.Price.Currency, result.Price.Slot)
	return result, nil
}

func (uc *UseCase) publish(ctx context.Context, key string, payload any) {
	if err := uc.publisher.Publish(ctx, key, payload); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish %s: %v", key, err)
	}
}

// mapPricingError переводит ошибки расчёта цены в ошибки use case
func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrStraddlesCutoff):
		return ErrCrossesPriceCutoff
	case errors.Is(err, pricing.ErrRateNotConfigured):
		return ErrRateNotConfigured
	case errors.Is(err, pricing.ErrInvalidInterval):
		return ErrInvalidTimeRange
	default:
		return fmt.Errorf("%w: failed to resolve price: %w", ErrInternal, err)
	}
}
