package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const signaturePrefix = "sha256="

// VerifySignature проверяет заголовок X-Hub-Signature-256 для тела запроса
func VerifySignature(appSecret string, body []byte, header string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign возвращает значение заголовка X-Hub-Signature-256 для тела
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhook извлекает входящие сообщения из тела вебхука.
// Колбэки статусов доставки и сообщения без полезной нагрузки пропускаются.
func ParseWebhook(body []byte) ([]InboundMessage, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var out []InboundMessage
	for _, e := range payload.Entry {
		for _, ch := range e.Changes {
			if len(ch.Value.Statuses) > 0 {
				continue
			}

			names := make(map[string]string, len(ch.Value.Contacts))
			for _, c := range ch.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}

			for _, m := range ch.Value.Messages {
				text := extractPayload(m)
				if m.From == "" || text == "" {
					continue
				}
				out = append(out, InboundMessage{
					MessageID:   m.ID,
					From:        m.From,
					DisplayName: names[m.From],
					Payload:     text,
				})
			}
		}
	}
	return out, nil
}

// extractPayload порядок: текст, id кнопки, id строки списка, затем заголовки
func extractPayload(m webhookMessage) string {
	var candidates []string
	if m.Text != nil {
		candidates = append(candidates, m.Text.Body)
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			candidates = append(candidates, m.Interactive.ButtonReply.ID)
		}
		if m.Interactive.ListReply != nil {
			candidates = append(candidates, m.Interactive.ListReply.ID)
		}
		if m.Interactive.ButtonReply != nil {
			candidates = append(candidates, m.Interactive.ButtonReply.Title)
		}
		if m.Interactive.ListReply != nil {
			candidates = append(candidates, m.Interactive.ListReply.Title)
		}
	}
	if m.Button != nil {
		candidates = append(candidates, m.Button.Payload, m.Button.Text)
	}

	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}
