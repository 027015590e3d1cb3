package rate

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrOpenRecordExists возвращается, когда у корта уже есть открытая запись тарифа
	ErrOpenRecordExists = fmt.Errorf("%w: rate.repository: open rate record already exists", domain.ErrIntegrity)

	// ErrRecordNotFound возвращается, когда закрываемая запись не найдена или уже закрыта
	ErrRecordNotFound = fmt.Errorf("%w: rate.repository: open rate record not found", domain.ErrNotFound)

	// ErrNotInTransaction возвращается, когда блокировка запрошена вне транзакции
	ErrNotInTransaction = errors.New("rate.repository: lock requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("rate.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("rate.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("rate.repository: failed to scan row")
)
