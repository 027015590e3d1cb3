package get_available_slots

import (
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	CourtID int64  // ID корта
	Date    string // Дата YYYY-MM-DD в часовом поясе клуба
}

// Response модель ответа со списком доступных слотов
type Response struct {
	CourtID     int64
	Date        string
	SlotMinutes int
	Slots       []types.TimeString // Начала свободных слотов, по возрастанию
}
