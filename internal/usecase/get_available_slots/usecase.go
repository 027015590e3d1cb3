package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// UseCase use case для получения доступных слотов корта
type UseCase struct {
	bookingRepo BookingRepository
	courtRepo   CourtRepository
	clock       Clock
	hours       domain.BusinessHours
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	clock Clock,
	hours domain.BusinessHours,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		clock:       clock,
		hours:       hours,
		logger:      logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: court=%d, date=%s", req.CourtID, req.Date)

	// 1. Валидация входных данных
	if req.CourtID <= 0 {
		return nil, fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	date, err := tzclock.ParseDate(req.Date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid date=%q", req.Date)
		return nil, ErrInvalidDate
	}
	if uc.clock.IsPast(date) {
		uc.logger.Warn("GetAvailableSlots: date=%s is in the past", date)
		return nil, ErrDateInPast
	}

	// 2. Проверяем корт
	if _, err := uc.courtRepo.GetByID(ctx, req.CourtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("GetAvailableSlots: court=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	// 3. Строим последовательность свободных слотов
	seq, err := AvailableSlots(ctx, uc.clock, date, uc.hours, uc.lookup(req.CourtID))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}

	slots := slices.Collect(seq)
	uc.logger.Info("GetAvailableSlots: %d free slots for court=%d, date=%s", len(slots), req.CourtID, date)

	return &Response{
		CourtID:     req.CourtID,
		Date:        date,
		SlotMinutes: uc.hours.SlotMinutes,
		Slots:       slots,
	}, nil
}

// lookup читает активные бронирования корта, пересекающие период
func (uc *UseCase) lookup(courtID int64) BookingLookup {
	return func(ctx context.Context, from, to time.Time) ([]domain.Interval, error) {
		bookings, err := uc.bookingRepo.GetByCourtWithFilter(ctx, domain.CourtBookingsFilter{
			CourtID: courtID,
			From:    &from,
			To:      &to,
		})
		if err != nil {
			return nil, err
		}
		return bookingIntervals(bookings), nil
	}
}
