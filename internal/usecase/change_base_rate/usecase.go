package change_base_rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	rateRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/rate"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tracing"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

var tracer = tracing.Tracer("usecase/change_base_rate")

// UseCase use case для смены базового тарифа корта
type UseCase struct {
	rateRepo  RateRepository
	courtRepo CourtRepository
	txManager TransactionManager
	locker    CourtLocker
	publisher EventPublisher
	clock     Clock
	logger    Logger
	newID     func() string
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	rateRepo RateRepository,
	courtRepo CourtRepository,
	txManager TransactionManager,
	locker CourtLocker,
	publisher EventPublisher,
	clock Clock,
	logger Logger,
) *UseCase {
	return &UseCase{
		rateRepo:  rateRepo,
		courtRepo: courtRepo,
		txManager: txManager,
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Execute закрывает текущую запись тарифа и открывает новую в одной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "ChangeBaseRate")
	defer span.End()
	span.SetAttributes(attribute.Int64("court.id", req.CourtID))

	uc.logger.Info("ChangeBaseRate: court=%d, am=%d, pm=%d", req.CourtID, req.AmPrice, req.PmPrice)

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, events.KeyRateChanged, events.NewRateChangedEvent(resp.Record)); err != nil {
		uc.logger.Warn("ChangeBaseRate: failed to publish %s: %v", events.KeyRateChanged, err)
	}
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	currency, cutoff, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("ChangeBaseRate: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем, что корт существует
	if _, err := uc.courtRepo.GetByID(ctx, req.CourtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("ChangeBaseRate: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("ChangeBaseRate: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	// 3. Смены тарифа одного корта идут строго по очереди
	unlock := uc.locker.Lock(req.CourtID)
	defer unlock()

	resp := &Response{}

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.rateRepo.LockCourt(txCtx, req.CourtID); err != nil {
			return fmt.Errorf("%w: failed to lock court: %w", ErrInternal, err)
		}

		now := uc.clock.Now()

		// 4. Закрываем текущую запись
		open, err := uc.rateRepo.GetOpen(txCtx, req.CourtID)
		if err != nil {
			return fmt.Errorf("%w: failed to get open record: %w", ErrInternal, err)
		}
		if open != nil {
			// Записи не должны пересекаться даже при отставших часах
			if now.Before(open.EffectiveFrom) {
				now = open.EffectiveFrom
			}
			if err := uc.rateRepo.Close(txCtx, open.ID, now); err != nil {
				return fmt.Errorf("%w: failed to close record id=%s: %w", ErrInternal, open.ID, err)
			}
			closedAt := now
			open.EffectiveTo = &closedAt
			resp.Previous = open
		}

		// 5. Открываем новую
		created, err := uc.rateRepo.Insert(txCtx, &domain.RateHistoryRecord{
			ID:            uc.newID(),
			CourtID:       req.CourtID,
			AmPrice:       req.AmPrice,
			PmPrice:       req.PmPrice,
			Currency:      currency,
			PriceCutoff:   cutoff,
			EffectiveFrom: now,
			SetByAdminID:  req.SetByAdminID,
		})
		if err != nil {
			if errors.Is(err, rateRepo.ErrOpenRecordExists) {
				return ErrConcurrentChange
			}
			return fmt.Errorf("%w: failed to insert record: %w", ErrInternal, err)
		}
		resp.Record = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("ChangeBaseRate: %v", err)
		} else {
			uc.logger.Warn("ChangeBaseRate: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("ChangeBaseRate: court=%d now uses record id=%s from %s",
		req.CourtID, resp.Record.ID, resp.Record.EffectiveFrom.Format(time.RFC3339))
	return resp, nil
}

func validateRequest(req *Request) (string, *types.TimeString, error) {
	if req.CourtID <= 0 {
		return "", nil, fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	if req.AmPrice < 0 || req.PmPrice < 0 {
		return "", nil, ErrNegativePrice
	}

	currency := domain.DefaultCurrency
	if req.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(c) != 3 {
			return "", nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidInput)
		}
		currency = c
	}

	var cutoff *types.TimeString
	if req.Cutoff != nil && strings.TrimSpace(*req.Cutoff) != "" {
		ts, err := types.NewTimeStringFromString(strings.TrimSpace(*req.Cutoff))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidCutoff, err)
		}
		cutoff = &ts
	}

	return currency, cutoff, nil
}
