package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// SendRecorder учитывает исходящие сообщения в метриках
type SendRecorder interface {
	IncOutboundSend(kind, result string)
}

// Config параметры Cloud API
type Config struct {
	APIURL        string // https://graph.facebook.com/v20.0
	PhoneNumberID string
	Token         string
	Timeout       time.Duration
}

// Client клиент WhatsApp Cloud API: текст и кнопки
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	metrics    SendRecorder
	log        Logger
}

// NewClient создает новый экземпляр клиента. metrics может быть nil.
func NewClient(cfg Config, metrics SendRecorder, log Logger) *Client {
	return &Client{
		endpoint: fmt.Sprintf("%s/%s/messages", strings.TrimRight(cfg.APIURL, "/"), cfg.PhoneNumberID),
		token:    cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: metrics,
		log:     log,
	}
}

// SendText отправляет обычное текстовое сообщение
func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.post(ctx, "text", &outboundMessage{
		To:   to,
		Type: "text",
		Text: &textBody{Body: text},
	})
}

// SendButtons отправляет от 1 до 3 кнопок быстрого ответа.
// Лишние кнопки отбрасываются, заголовки обрезаются до 20 символов.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []domain.Button) error {
	if len(buttons) == 0 {
		return fmt.Errorf("%w: no buttons", ErrInvalidMessage)
	}
	if len(buttons) > MaxButtons {
		c.log.Warn("WhatsApp: %d buttons requested, sending first %d", len(buttons), MaxButtons)
		buttons = buttons[:MaxButtons]
	}

	replies := make([]replyButton, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, replyButton{
			Type:  "reply",
			Reply: replyTitle{ID: b.ID, Title: truncate(b.Title, MaxButtonTitle)},
		})
	}

	return c.post(ctx, "buttons", &outboundMessage{
		To:   to,
		Type: "interactive",
		Interactive: &interactive{
			Type:   "button",
			Body:   textBodyOnly{Text: body},
			Action: interactiveAction{Buttons: replies},
		},
	})
}

func (c *Client) post(ctx context.Context, kind string, msg *outboundMessage) error {
	msg.MessagingProduct = "whatsapp"
	msg.RecipientType = "individual"
	msg.To = strings.TrimPrefix(msg.To, "+")

	err := c.do(ctx, msg)
	if c.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.IncOutboundSend(kind, result)
	}
	if err != nil {
		c.log.Error("WhatsApp: failed to send %s to %s: %v", kind, msg.To, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, msg *outboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: failed to encode message: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr ErrorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("%w: status %d: code %d: %s", ErrInvalidResponse, resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
}

// ListClient клиент с поддержкой интерактивных списков
type ListClient struct {
	*Client
}

// NewListClient создает клиент, умеющий отправлять списки
func NewListClient(cfg Config, metrics SendRecorder, log Logger) *ListClient {
	return &ListClient{Client: NewClient(cfg, metrics, log)}
}

// SendList отправляет интерактивный список. Всего не больше 10 строк.
func (c *ListClient) SendList(ctx context.Context, to string, list domain.ListMessage) error {
	sections := make([]listSection, 0, len(list.Sections))
	total := 0
	for _, s := range list.Sections {
		if total == MaxListRows {
			break
		}
		section := listSection{Title: truncate(s.Title, MaxSectionTitle)}
		for _, r := range s.Rows {
			if total == MaxListRows {
				break
			}
			section.Rows = append(section.Rows, listRow{
				ID:          r.ID,
				Title:       truncate(r.Title, MaxListRowTitle),
				Description: truncate(r.Description, MaxListRowDesc),
			})
			total++
		}
		if len(section.Rows) > 0 {
			sections = append(sections, section)
		}
	}
	if total == 0 {
		return fmt.Errorf("%w: empty list", ErrInvalidMessage)
	}

	buttonText := list.ButtonText
	if buttonText == "" {
		buttonText = "Ver opciones"
	}

	msg := &outboundMessage{
		To:   to,
		Type: "interactive",
		Interactive: &interactive{
			Type:   "list",
			Body:   textBodyOnly{Text: list.Body},
			Action: interactiveAction{Button: truncate(buttonText, MaxListButtonText), Sections: sections},
		},
	}
	if list.Header != "" {
		msg.Interactive.Header = &interactiveHeader{Type: "text", Text: truncate(list.Header, MaxListHeader)}
	}
	if list.Footer != "" {
		msg.Interactive.Footer = &textBodyOnly{Text: list.Footer}
	}

	return c.post(ctx, "list", msg)
}

// truncate обрезает строку по символам, а не байтам
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
