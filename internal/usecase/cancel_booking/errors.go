package cancel_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: cancel_booking: invalid input data", domain.ErrValidation)

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("%w: cancel_booking: booking not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда актор не может отменить бронирование
	ErrAccessDenied = fmt.Errorf("%w: cancel_booking: access denied", domain.ErrAuthorization)

	// ErrTooLateToCancel возвращается, когда до начала меньше окна отмены
	ErrTooLateToCancel = fmt.Errorf("%w: cancel_booking: too late to cancel", domain.ErrAuthorization)

	// ErrAlreadyCancelled возвращается при повторной отмене в строгом режиме
	ErrAlreadyCancelled = fmt.Errorf("%w: cancel_booking: booking already cancelled", domain.ErrConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
