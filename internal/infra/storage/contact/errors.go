package contact

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrContactNotFound возвращается, когда контакт не найден
	ErrContactNotFound = fmt.Errorf("%w: contact.repository: contact not found", domain.ErrNotFound)

	// ErrInvalidPhone возвращается для телефона без цифр
	ErrInvalidPhone = fmt.Errorf("%w: contact.repository: invalid phone", domain.ErrValidation)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("contact.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("contact.repository: failed to scan row")
)
