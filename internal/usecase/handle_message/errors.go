package handle_message

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается, если у сообщения нет отправителя
	ErrInvalidInput = fmt.Errorf("%w: handle_message: invalid input data", domain.ErrValidation)

	// ErrSessionStore возвращается при сбое хранилища сессий
	ErrSessionStore = errors.New("handle_message: session store failure")

	// ErrContact возвращается, если не удалось получить контакт
	ErrContact = errors.New("handle_message: contact lookup failure")
)
