package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CourtID   int64     `json:"courtId"`
	UserID    *string   `json:"userId,omitempty"`
	StartTime time.Time `json:"startTime"` // RFC3339
	EndTime   time.Time `json:"endTime"`   // RFC3339
	Status    *string   `json:"status,omitempty"`
	Title     *string   `json:"title,omitempty"`
}

var errInvalidStatus = errors.New("status must be pending or confirmed")

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	req := &createBooking.Request{
		CourtID:   r.CourtID,
		UserID:    r.UserID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Title:     r.Title,
	}

	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		if status != domain.StatusPending && status != domain.StatusConfirmed {
			return nil, errInvalidStatus
		}
		req.Status = &status
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingResponse {
	return models.FromDomainBooking(resp.Booking)
}
