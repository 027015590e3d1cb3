package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: get_available_slots: court not found", domain.ErrNotFound)

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = fmt.Errorf("%w: get_available_slots: invalid date", domain.ErrValidation)

	// ErrDateInPast возвращается для даты раньше сегодняшней
	ErrDateInPast = fmt.Errorf("%w: get_available_slots: date is in the past", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: get_available_slots: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
