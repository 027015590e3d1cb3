package change_base_rate

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Request модель запроса на смену базового тарифа
type Request struct {
	CourtID      int64
	AmPrice      int64
	PmPrice      int64
	Currency     *string // По умолчанию CLP
	Cutoff       *string // HH:MM, опционально
	SetByAdminID *string
}

// Response модель ответа
type Response struct {
	Record   *domain.RateHistoryRecord // Новая открытая запись
	Previous *domain.RateHistoryRecord // Закрытая запись, если была
}
