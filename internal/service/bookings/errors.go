package bookings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: bookings: booking not found", domain.ErrNotFound)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: bookings: court not found", domain.ErrNotFound)

	// ErrInvalidStatus возвращается при недопустимом статусе в фильтре
	ErrInvalidStatus = fmt.Errorf("%w: bookings: invalid booking status", domain.ErrValidation)

	// ErrInvalidTimeRange возвращается, когда from позже to
	ErrInvalidTimeRange = fmt.Errorf("%w: bookings: invalid time range", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
