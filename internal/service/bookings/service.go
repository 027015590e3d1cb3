package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// Service сервис чтения бронирований и каталога кортов
type Service struct {
	bookingRepo BookingRepository
	courtRepo   CourtRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetCourtBookings получает бронирования корта за период
// По умолчанию отменённые бронирования не возвращаются
func (s *Service) GetCourtBookings(ctx context.Context, req *models.GetCourtBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCourtBookings: court=%d from=%v to=%v status=%v", req.CourtID, req.From, req.To, req.Status)

	// 1. Валидация фильтра
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, ErrInvalidTimeRange
	}

	filter := domain.CourtBookingsFilter{
		CourtID:         req.CourtID,
		From:            req.From,
		To:              req.To,
		IncludeInactive: req.IncludeInactive,
	}
	if req.Status != nil {
		status, ok := models.ToDomainBookingStatus(*req.Status)
		if !ok {
			s.logger.Warn("GetCourtBookings: invalid status=%s", *req.Status)
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
		if status == domain.StatusCancelled {
			filter.IncludeInactive = true
		}
	}

	// 2. Корт и его бронирования читаем в одной read-only транзакции
	var bookings []*domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.courtRepo.GetByID(txCtx, req.CourtID); err != nil {
			if errors.Is(err, courtRepo.ErrCourtNotFound) {
				s.logger.Warn("GetCourtBookings: court=%d not found", req.CourtID)
				return ErrCourtNotFound
			}
			s.logger.Error("GetCourtBookings: failed to get court=%d: %v", req.CourtID, err)
			return fmt.Errorf("%w: GetCourtBookings - get court: %v", ErrInternal, err)
		}

		// 3. Получаем бронирования
		var err error
		bookings, err = s.bookingRepo.GetByCourtWithFilter(txCtx, filter)
		if err != nil {
			s.logger.Error("GetCourtBookings: repository error for court=%d: %v", req.CourtID, err)
			return fmt.Errorf("%w: GetCourtBookings - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetCourtBookings: found %d bookings for court=%d", len(bookings), req.CourtID)
	return models.FromDomainBookingList(bookings), nil
}

// ListCourts возвращает активные корты
func (s *Service) ListCourts(ctx context.Context) ([]models.CourtResponse, error) {
	courts, err := s.courtRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("ListCourts: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListCourts - repository error: %v", ErrInternal, err)
	}

	resp := make([]models.CourtResponse, 0, len(courts))
	for _, c := range courts {
		resp = append(resp, models.FromDomainCourt(c))
	}
	return resp, nil
}
