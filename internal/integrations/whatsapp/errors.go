package whatsapp

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("whatsapp client: internal error")

	// ErrInvalidResponse возвращается при неуспешном ответе Cloud API
	ErrInvalidResponse = errors.New("whatsapp client: invalid response")

	// ErrInvalidMessage возвращается, если сообщение нельзя отправить в таком виде
	ErrInvalidMessage = errors.New("whatsapp client: invalid message")

	// ErrInvalidPayload возвращается, если тело вебхука не разобрать
	ErrInvalidPayload = errors.New("whatsapp webhook: invalid payload")
)
