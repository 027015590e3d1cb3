package create_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	CourtID   int64                 // ID корта
	UserID    *string               // Владелец (веб)
	ContactID *string               // Контакт (чат)
	StartTime time.Time             // Начало, включительно
	EndTime   time.Time             // Конец, не включительно
	Date      string                // YYYY-MM-DD; пусто = дата начала в часовом поясе клуба
	Status    *domain.BookingStatus // pending или confirmed, по умолчанию confirmed
	Title     *string               // Название (например, имя для чата)

	// AutoConfirm подтверждает pending-бронирование в той же транзакции
	AutoConfirm bool
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
