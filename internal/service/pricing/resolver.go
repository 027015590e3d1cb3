package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Resolver вычисляет снимок цены бронирования
type Resolver struct {
	rates  RateRepository
	courts CourtRepository
	clock  Clock
	logger Logger
}

func NewResolver(rates RateRepository, courts CourtRepository, clock Clock, logger Logger) *Resolver {
	return &Resolver{
		rates:  rates,
		courts: courts,
		clock:  clock,
		logger: logger,
	}
}

// Resolve рассчитывает цену интервала [start, end) корта courtID на дату date
func (r *Resolver) Resolve(ctx context.Context, courtID int64, date string, start, end time.Time) (domain.PriceSnapshot, error) {
	court, err := r.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			return domain.PriceSnapshot{}, ErrCourtNotFound
		}
		return domain.PriceSnapshot{}, fmt.Errorf("%w: get court: %w", ErrInternal, err)
	}
	return r.ResolveForCourt(ctx, court, date, start, end)
}

// ResolveForCourt то же, что Resolve, для уже загруженного корта
func (r *Resolver) ResolveForCourt(ctx context.Context, court *domain.Court, date string, start, end time.Time) (domain.PriceSnapshot, error) {
	if !end.After(start) {
		return domain.PriceSnapshot{}, ErrInvalidInterval
	}

	// 1. Тариф на дату: переопределение или базовый
	rate, err := r.RateFor(ctx, court, date)
	if err != nil {
		return domain.PriceSnapshot{}, err
	}

	// 2. Определяем половину дня по началу интервала
	interval := domain.Interval{Start: start, End: end}
	minutes := interval.Minutes()
	slot, err := classify(r.clock.MinuteOfDay(start), minutes, rate.Cutoff)
	if err != nil {
		r.logger.Warn("Pricing: court=%d date=%s %s-%s straddles cutoff %s",
			court.ID, date, start.Format(time.RFC3339), end.Format(time.RFC3339), cutoffString(rate.Cutoff))
		return domain.PriceSnapshot{}, err
	}

	// 3. Цена за час -> цена интервала
	hourly := rate.PriceFor(slot)
	if hourly == nil {
		r.logger.Warn("Pricing: court=%d date=%s has no %s rate (origin=%s)", court.ID, date, slot, rate.Origin)
		return domain.PriceSnapshot{}, fmt.Errorf("%w: court %d, slot %s", ErrRateNotConfigured, court.ID, slot)
	}

	return domain.PriceSnapshot{
		Amount:   priceForMinutes(*hourly, minutes),
		Currency: rate.Currency,
		Slot:     slot,
		Source:   rate.Origin.BookingSource(),
		Cutoff:   rate.Cutoff,
	}, nil
}

// RateFor возвращает тариф корта на дату.
// Дневное переопределение побеждает всегда; иначе запись истории, действующая сейчас, иначе цены корта.
// Граница AM/PM берётся из действующей записи истории, а без неё с уровня корта.
func (r *Resolver) RateFor(ctx context.Context, court *domain.Court, date string) (domain.HalfDayRate, error) {
	override, err := r.rates.GetDailyOverride(ctx, court.ID, date)
	if err != nil {
		return domain.HalfDayRate{}, fmt.Errorf("%w: get daily override: %w", ErrInternal, err)
	}

	current, err := r.rates.GetAt(ctx, court.ID, r.clock.Now())
	if err != nil {
		return domain.HalfDayRate{}, fmt.Errorf("%w: get current base rate: %w", ErrInternal, err)
	}

	cutoff := court.PriceCutoff
	if current != nil {
		cutoff = current.PriceCutoff
	}

	if override != nil {
		return domain.HalfDayRate{
			AmPrice:  override.AmPrice,
			PmPrice:  override.PmPrice,
			Currency: firstNonEmpty(override.Currency, court.Currency, domain.DefaultCurrency),
			Cutoff:   cutoff,
			Origin:   domain.OriginDaily,
		}, nil
	}

	if current != nil {
		am, pm := current.AmPrice, current.PmPrice
		return domain.HalfDayRate{
			AmPrice:  &am,
			PmPrice:  &pm,
			Currency: firstNonEmpty(current.Currency, court.Currency, domain.DefaultCurrency),
			Cutoff:   cutoff,
			Origin:   domain.OriginCourtDefault,
		}, nil
	}

	return domain.HalfDayRate{
		AmPrice:  court.DefaultAmPrice,
		PmPrice:  court.DefaultPmPrice,
		Currency: firstNonEmpty(court.Currency, domain.DefaultCurrency),
		Cutoff:   cutoff,
		Origin:   domain.OriginCourtDefault,
	}, nil
}

// classify относит интервал к AM или PM.
// Без границы весь день считается PM. Интервал, начавшийся до границы и
// закончившийся после неё, отклоняется.
func classify(startMinute int, durationMinutes int64, cutoff *types.TimeString) (domain.PricingSlot, error) {
	if cutoff == nil || cutoff.IsZero() {
		return domain.SlotPM, nil
	}
	c := cutoff.Minutes()
	if c < 0 {
		return domain.SlotPM, nil
	}

	if startMinute >= c {
		return domain.SlotPM, nil
	}
	if int64(startMinute)+durationMinutes > int64(c) {
		return "", ErrStraddlesCutoff
	}
	return domain.SlotAM, nil
}

// priceForMinutes = round(hourly * minutes / 60), половина округляется вверх
func priceForMinutes(hourly, minutes int64) int64 {
	return (hourly*minutes + 30) / 60
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cutoffString(c *types.TimeString) string {
	if c == nil {
		return "none"
	}
	return c.String()
}
