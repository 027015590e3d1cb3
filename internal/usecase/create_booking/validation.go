package create_booking

import (
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// validateRequest валидирует входные данные запроса и возвращает дату и статус бронирования
func validateRequest(req *Request, clock Clock) (string, domain.BookingStatus, error) {
	if req.CourtID <= 0 {
		return "", "", fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return "", "", fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	interval := domain.Interval{Start: req.StartTime, End: req.EndTime}
	if !interval.Valid() {
		return "", "", ErrInvalidTimeRange
	}

	date := clock.DateOf(req.StartTime)
	if clock.IsPast(date) {
		return "", "", ErrBookingInPast
	}
	if req.Date != "" {
		parsed, err := tzclock.ParseDate(req.Date)
		if err != nil {
			return "", "", fmt.Errorf("%w: invalid date %q", ErrInvalidInput, req.Date)
		}
		if parsed != date {
			return "", "", fmt.Errorf("%w: date %s does not match start %s", ErrInvalidInput, parsed, date)
		}
	}

	status := ptr.Deref(req.Status, domain.StatusConfirmed)
	if status != domain.StatusPending && status != domain.StatusConfirmed {
		return "", "", fmt.Errorf("%w: status must be pending or confirmed", ErrInvalidInput)
	}

	if req.Title != nil && utf8.RuneCountInString(*req.Title) > domain.MaxTitleLength {
		return "", "", fmt.Errorf("%w: title longer than %d characters", ErrInvalidInput, domain.MaxTitleLength)
	}

	return date, status, nil
}
