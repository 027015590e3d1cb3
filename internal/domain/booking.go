package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Booking is a reservation of one court for the half-open interval [StartTime, EndTime).
// Only cancellation mutates a booking; bookings are never deleted.
type Booking struct {
	ID          string
	CourtID     int64
	UserID      *string
	ContactID   *string
	StartTime   time.Time
	EndTime     time.Time
	BookingDate string // YYYY-MM-DD in the business zone
	Status      BookingStatus
	Title       *string

	Price PriceSnapshot

	CancellationReason *string
	CancelledBy        *string // serialized actor tag
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the booking's occupied time range
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// IsActive returns true if the booking still occupies its court
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// CourtBookingsFilter фильтр для получения бронирований корта
type CourtBookingsFilter struct {
	CourtID         int64          // Обязательный параметр
	From            *time.Time     // Бронирования, заканчивающиеся после From
	To              *time.Time     // Бронирования, начинающиеся до To
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
}
