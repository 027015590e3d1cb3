package cancel_booking

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	cancelBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	By     string  `json:"by"` // admin:<id> | user:<id> | wa:<phone>
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	Booking          *models.BookingResponse `json:"booking"`
	AlreadyCancelled bool                    `json:"alreadyCancelled"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID string) *cancelBooking.Request {
	return &cancelBooking.Request{
		BookingID: bookingID,
		Actor:     r.By,
		Reason:    r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		Booking:          models.FromDomainBooking(resp.Booking),
		AlreadyCancelled: resp.AlreadyCancelled,
	}
}
