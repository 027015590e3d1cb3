package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_booking: invalid input data", domain.ErrValidation)

	// ErrInvalidTimeRange возвращается, когда конец бронирования не позже начала
	ErrInvalidTimeRange = fmt.Errorf("%w: create_booking: end must be after start", domain.ErrValidation)

	// ErrBookingInPast возвращается для бронирования на прошедшую дату
	ErrBookingInPast = fmt.Errorf("%w: create_booking: booking date is in the past", domain.ErrValidation)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: create_booking: court not found", domain.ErrNotFound)

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с активным бронированием
	ErrSlotNotAvailable = fmt.Errorf("%w: create_booking: slot is not available", domain.ErrConflict)

	// ErrCrossesPriceCutoff возвращается, когда интервал пересекает границу AM/PM
	ErrCrossesPriceCutoff = fmt.Errorf("%w: create_booking: booking crosses the price cutoff", domain.ErrConflict)

	// ErrRateNotConfigured возвращается, когда для половины дня нет цены
	ErrRateNotConfigured = fmt.Errorf("%w: create_booking: no rate configured for slot", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
