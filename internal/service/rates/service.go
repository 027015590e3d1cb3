package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// Service сервис чтения истории тарифов
type Service struct {
	rateRepo  RateRepository
	courtRepo CourtRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса тарифов
func NewService(rateRepo RateRepository, courtRepo CourtRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		rateRepo:  rateRepo,
		courtRepo: courtRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// GetRateAt возвращает запись, действовавшую в момент at
func (s *Service) GetRateAt(ctx context.Context, courtID int64, at time.Time) (*models.RateRecordResponse, error) {
	var record *domain.RateHistoryRecord
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureCourt(txCtx, courtID); err != nil {
			return err
		}

		var err error
		record, err = s.rateRepo.GetAt(txCtx, courtID, at)
		if err != nil {
			s.logger.Error("GetRateAt: repository error for court=%d: %v", courtID, err)
			return fmt.Errorf("%w: GetRateAt - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRateNotFound
	}
	return models.FromDomainRecord(record), nil
}

// ListHistory возвращает историю тарифов корта, от новых к старым.
// limit <= 0 заменяется значением по умолчанию, слишком большой limit обрезается.
func (s *Service) ListHistory(ctx context.Context, courtID int64, limit int) (*models.RateHistoryResponse, error) {
	limit = clampLimit(limit)

	var records []*domain.RateHistoryRecord
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureCourt(txCtx, courtID); err != nil {
			return err
		}

		var err error
		records, err = s.rateRepo.ListHistory(txCtx, courtID, limit)
		if err != nil {
			s.logger.Error("ListHistory: repository error for court=%d: %v", courtID, err)
			return fmt.Errorf("%w: ListHistory - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ListHistory: court=%d returned %d records (limit=%d)", courtID, len(records), limit)
	return models.FromDomainHistory(records), nil
}

// GetDailyOverride возвращает переопределение тарифа на дату
func (s *Service) GetDailyOverride(ctx context.Context, courtID int64, date string) (*models.DailyOverrideResponse, error) {
	date, err := tzclock.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	var override *domain.DailyRateOverride
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureCourt(txCtx, courtID); err != nil {
			return err
		}

		var err error
		override, err = s.rateRepo.GetDailyOverride(txCtx, courtID, date)
		if err != nil {
			s.logger.Error("GetDailyOverride: repository error for court=%d date=%s: %v", courtID, date, err)
			return fmt.Errorf("%w: GetDailyOverride - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if override == nil {
		return nil, ErrOverrideNotFound
	}
	return models.FromDomainOverride(override), nil
}

func (s *Service) ensureCourt(ctx context.Context, courtID int64) error {
	if _, err := s.courtRepo.GetByID(ctx, courtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.logger.Warn("rates: court=%d not found", courtID)
			return ErrCourtNotFound
		}
		return fmt.Errorf("%w: get court: %v", ErrInternal, err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return domain.DefaultHistoryLimit
	}
	if limit > domain.MaxHistoryLimit {
		return domain.MaxHistoryLimit
	}
	return limit
}
