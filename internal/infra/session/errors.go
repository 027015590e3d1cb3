package session

import "errors"

var (
	// ErrEncode возвращается, когда сессию не удалось сериализовать
	ErrEncode = errors.New("session.store: failed to encode session")

	// ErrDecode возвращается, когда сохранённая сессия повреждена
	ErrDecode = errors.New("session.store: failed to decode session")

	// ErrBackend возвращается при ошибке хранилища
	ErrBackend = errors.New("session.store: backend error")
)
