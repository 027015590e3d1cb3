package pricing

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: pricing: court not found", domain.ErrNotFound)

	// ErrInvalidInterval возвращается, когда конец интервала не позже начала
	ErrInvalidInterval = fmt.Errorf("%w: pricing: end must be after start", domain.ErrValidation)

	// ErrStraddlesCutoff возвращается, когда интервал пересекает границу AM/PM
	ErrStraddlesCutoff = fmt.Errorf("%w: pricing: interval straddles the price cutoff", domain.ErrConflict)

	// ErrRateNotConfigured возвращается, когда для половины дня нет цены
	ErrRateNotConfigured = fmt.Errorf("%w: pricing: no rate configured", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("pricing: internal error")
)
