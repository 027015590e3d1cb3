package whatsapp_webhook

import (
	"context"

	handleMessage "github.com/m04kA/SMC-CourtBookingService/internal/usecase/handle_message"
)

type HandleMessageUseCase interface {
	Execute(ctx context.Context, in *handleMessage.Inbound) error
}

// RateLimiter ограничение частоты по телефону
type RateLimiter interface {
	Allow(key string) bool
}

// Metrics счётчики входящих сообщений; может быть nil
type Metrics interface {
	IncWebhookMessage(result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
