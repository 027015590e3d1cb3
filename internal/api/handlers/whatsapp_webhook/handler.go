package whatsapp_webhook

import (
	"context"
	"io"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/whatsapp"
	handleMessage "github.com/m04kA/SMC-CourtBookingService/internal/usecase/handle_message"
)

const (
	maxBodyBytes = 1 << 20

	msgForbidden        = "verification failed"
	msgInvalidSignature = "invalid signature"
	msgInvalidPayload   = "invalid payload"
)

type Handler struct {
	useCase HandleMessageUseCase
	limiter RateLimiter
	metrics Metrics
	cfg     Config
	logger  Logger
}

func NewHandler(useCase HandleMessageUseCase, limiter RateLimiter, metrics Metrics, cfg Config, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		limiter: limiter,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// Verify GET /webhook/whatsapp
// Подтверждение подписки: hub.mode=subscribe и совпадающий токен -> echo hub.challenge
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") != "subscribe" || h.cfg.VerifyToken == "" || q.Get("hub.verify_token") != h.cfg.VerifyToken {
		h.logger.Warn("GET /webhook/whatsapp - Verification failed: mode=%q", q.Get("hub.mode"))
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	h.logger.Info("GET /webhook/whatsapp - Subscription verified")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, q.Get("hub.challenge"))
}

// Handle POST /webhook/whatsapp
// Принятый провайдером payload всегда подтверждается 200, ошибки обработки только логируются.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("POST /webhook/whatsapp - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	// 1. Подпись
	if h.cfg.AppSecret != "" && !whatsapp.VerifySignature(h.cfg.AppSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("POST /webhook/whatsapp - Invalid signature")
		h.count(resultRejected)
		handlers.RespondError(w, http.StatusUnauthorized, msgInvalidSignature)
		return
	}

	// 2. Разбор
	messages, err := whatsapp.ParseWebhook(body)
	if err != nil {
		h.logger.Warn("POST /webhook/whatsapp - Invalid payload: %v", err)
		h.count(resultRejected)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	// 3. Обработка; отключение провайдера не прерывает диалог
	ctx := context.WithoutCancel(r.Context())
	for _, m := range messages {
		phone := domain.NormalizePhone(m.From)
		if h.limiter != nil && !h.limiter.Allow(phone) {
			h.logger.Warn("POST /webhook/whatsapp - Throttled: phone=%s, message_id=%s", phone, m.MessageID)
			h.count(resultThrottled)
			continue
		}

		err := h.useCase.Execute(ctx, &handleMessage.Inbound{
			From:        m.From,
			DisplayName: m.DisplayName,
			Payload:     m.Payload,
		})
		if err != nil {
			h.logger.Error("POST /webhook/whatsapp - Failed to handle message: phone=%s, message_id=%s, error=%v",
				phone, m.MessageID, err)
			h.count(resultFailed)
			continue
		}
		h.count(resultProcessed)
	}

	handlers.RespondJSON(w, http.StatusOK, AckResponse{Status: "ok", Received: len(messages)})
}

func (h *Handler) count(result string) {
	if h.metrics != nil {
		h.metrics.IncWebhookMessage(result)
	}
}
