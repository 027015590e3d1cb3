package whatsapp_webhook

// Config секреты вебхука
type Config struct {
	VerifyToken string // hub.verify_token при подписке
	AppSecret   string // пусто - подпись не проверяется
}

// Результаты обработки для метрик
const (
	resultProcessed = "processed"
	resultThrottled = "throttled"
	resultFailed    = "failed"
	resultRejected  = "rejected"
)

// AckResponse ответ провайдеру
type AckResponse struct {
	Status   string `json:"status"`
	Received int    `json:"received"`
}
