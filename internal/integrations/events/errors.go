package events

import "errors"

var (
	// ErrConnect возвращается, когда не удалось подключиться к брокеру
	ErrConnect = errors.New("events: failed to connect to broker")

	// ErrEncode возвращается, когда событие не сериализуется в JSON
	ErrEncode = errors.New("events: failed to encode event")

	// ErrPublish возвращается, когда брокер не принял сообщение
	ErrPublish = errors.New("events: failed to publish event")
)
