package handle_message

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// deliver отправляет ответы по порядку. Ошибка отправки не прерывает остальные:
// состояние уже сохранено, пользователь может повторить.
func (uc *UseCase) deliver(ctx context.Context, to string, prompts []prompt) {
	for _, p := range prompts {
		var err error
		switch {
		case p.list != nil:
			err = uc.sendList(ctx, to, *p.list)
		case len(p.buttons) > 0:
			err = uc.sendButtons(ctx, to, p.body, p.buttons)
		default:
			err = uc.gateway.SendText(ctx, to, p.text)
		}
		if err != nil {
			uc.logger.Warn("HandleMessage: failed to deliver prompt to %s: %v", to, err)
		}
	}
}

// sendList деградирует: список -> кнопки -> текст
func (uc *UseCase) sendList(ctx context.Context, to string, l domain.ListMessage) error {
	if ls, ok := uc.gateway.(ListSender); ok {
		err := ls.SendList(ctx, to, l)
		if err == nil {
			return nil
		}
		uc.logger.Warn("HandleMessage: list delivery failed, falling back to buttons: %v", err)
	}

	rows := l.Rows()
	btns := make([]domain.Button, 0, min(len(rows), domain.CancelPageSize))
	for _, r := range rows[:min(len(rows), domain.CancelPageSize)] {
		btns = append(btns, domain.Button{ID: r.ID, Title: r.Title})
	}
	return uc.sendButtons(ctx, to, l.Body, btns)
}

// sendButtons при ошибке отправляет те же варианты нумерованным текстом
func (uc *UseCase) sendButtons(ctx context.Context, to, body string, btns []domain.Button) error {
	err := uc.gateway.SendButtons(ctx, to, body, btns)
	if err == nil {
		return nil
	}
	uc.logger.Warn("HandleMessage: buttons delivery failed, falling back to text: %v", err)
	return uc.gateway.SendText(ctx, to, numbered(body, btns))
}

func numbered(body string, btns []domain.Button) string {
	var b strings.Builder
	b.WriteString(body)
	for i, btn := range btns {
		fmt.Fprintf(&b, "\n%d. %s", i+1, btn.Title)
	}
	return b.String()
}
