package change_base_rate

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: change_base_rate: invalid input data", domain.ErrValidation)

	// ErrNegativePrice возвращается, если цена меньше нуля
	ErrNegativePrice = fmt.Errorf("%w: change_base_rate: price must not be negative", domain.ErrValidation)

	// ErrInvalidCutoff возвращается при некорректном времени разделения AM/PM
	ErrInvalidCutoff = fmt.Errorf("%w: change_base_rate: invalid cutoff time", domain.ErrValidation)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: change_base_rate: court not found", domain.ErrNotFound)

	// ErrConcurrentChange возвращается, если открытую запись успели создать параллельно
	ErrConcurrentChange = fmt.Errorf("%w: change_base_rate: rate changed concurrently", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("change_base_rate: internal error")
)
