package events

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Ключи маршрутизации topic exchange
const (
	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
	KeyRateChanged      = "rate.changed"
)

// BookingEvent событие жизненного цикла бронирования
type BookingEvent struct {
	BookingID   string    `json:"bookingId"`
	CourtID     int64     `json:"courtId"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	BookingDate string    `json:"bookingDate"`
	UserID      *string   `json:"userId,omitempty"`
	ContactID   *string   `json:"contactId,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	CancelledBy *string   `json:"cancelledBy,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// RateChangedEvent событие смены базового тарифа
type RateChangedEvent struct {
	RecordID      string    `json:"recordId"`
	CourtID       int64     `json:"courtId"`
	AmPrice       int64     `json:"amPrice"`
	PmPrice       int64     `json:"pmPrice"`
	Currency      string    `json:"currency"`
	PriceCutoff   *string   `json:"priceCutoff,omitempty"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
	SetByAdminID  *string   `json:"setByAdminId,omitempty"`
}

// NewBookingEvent собирает событие из бронирования
func NewBookingEvent(b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:   b.ID,
		CourtID:     b.CourtID,
		Status:      string(b.Status),
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		BookingDate: b.BookingDate,
		UserID:      b.UserID,
		ContactID:   b.ContactID,
		Amount:      b.Price.Amount,
		Currency:    b.Price.Currency,
		CancelledBy: b.CancelledBy,
		OccurredAt:  at,
	}
}

// NewRateChangedEvent собирает событие из новой записи тарифа
func NewRateChangedEvent(r *domain.RateHistoryRecord) RateChangedEvent {
	ev := RateChangedEvent{
		RecordID:      r.ID,
		CourtID:       r.CourtID,
		AmPrice:       r.AmPrice,
		PmPrice:       r.PmPrice,
		Currency:      r.Currency,
		EffectiveFrom: r.EffectiveFrom,
		SetByAdminID:  r.SetByAdminID,
	}
	if r.PriceCutoff != nil {
		c := r.PriceCutoff.String()
		ev.PriceCutoff = &c
	}
	return ev
}
