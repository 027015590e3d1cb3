package booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: booking.repository: booking not found", domain.ErrNotFound)

	// ErrOverlappingBooking возвращается, когда БД отклонила вставку пересекающегося бронирования
	ErrOverlappingBooking = fmt.Errorf("%w: booking.repository: overlapping active booking", domain.ErrIntegrity)

	// ErrAlreadyCancelled возвращается, когда бронирование уже отменено к моменту обновления
	ErrAlreadyCancelled = errors.New("booking.repository: booking already cancelled")

	// ErrNotInTransaction возвращается, когда блокировка запрошена вне транзакции
	ErrNotInTransaction = errors.New("booking.repository: lock requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
