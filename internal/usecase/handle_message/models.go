package handle_message

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// Inbound входящее сообщение
type Inbound struct {
	From        string // Телефон в любом виде, нормализуется
	DisplayName string // Имя профиля, если провайдер его прислал
	Payload     string // Текст или id кнопки/строки списка
}

// Options настройки диалога
type Options struct {
	Courts       []int64              // Корты, предлагаемые кнопками (не больше 3)
	Hours        domain.BusinessHours // Сетка слотов
	Timezone     string               // Часовой пояс новых контактов
	GraceMinutes int                  // Для подсказки в списке отмены
}

// DefaultOptions корты 1-3, 07:00-23:00 по 60 минут
func DefaultOptions() Options {
	return Options{
		Courts:       []int64{1, 2, 3},
		Hours:        domain.DefaultBusinessHours(),
		Timezone:     tzclock.DefaultZone,
		GraceMinutes: domain.DefaultGraceMinutes,
	}
}

// prompt одно исходящее сообщение; заполнено ровно одно из полей
type prompt struct {
	text    string
	body    string
	buttons []domain.Button
	list    *domain.ListMessage
}

func text(s string) prompt {
	return prompt{text: s}
}

func buttons(body string, b ...domain.Button) prompt {
	return prompt{body: body, buttons: b}
}

func list(l domain.ListMessage) prompt {
	return prompt{list: &l}
}

// outcome результат одного шага: новая сессия (nil - удалить) и сообщения
type outcome struct {
	session *domain.Session
	prompts []prompt
}

func keep(sess *domain.Session, p ...prompt) outcome {
	return outcome{session: sess, prompts: p}
}

func reset(p ...prompt) outcome {
	return outcome{prompts: p}
}
