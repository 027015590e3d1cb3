package cancel_booking

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID string  // ID бронирования
	Actor     string  // Тег актора: admin:<id>, user:<id>, wa:+<digits>
	Reason    *string // Причина отмены (опционально)
}

// Response модель ответа
type Response struct {
	Booking *domain.Booking

	// AlreadyCancelled true, если бронирование было отменено раньше и ничего не изменилось
	AlreadyCancelled bool
}
