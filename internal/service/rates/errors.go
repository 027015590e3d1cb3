package rates

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: rates: court not found", domain.ErrNotFound)

	// ErrRateNotFound возвращается, когда на момент времени нет записи тарифа
	ErrRateNotFound = fmt.Errorf("%w: rates: no base rate in effect", domain.ErrNotFound)

	// ErrOverrideNotFound возвращается, когда на дату нет переопределения
	ErrOverrideNotFound = fmt.Errorf("%w: rates: no daily override for date", domain.ErrNotFound)

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = fmt.Errorf("%w: rates: invalid date", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("rates: internal error")
)
