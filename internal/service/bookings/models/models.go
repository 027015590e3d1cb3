package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Request модели

// GetCourtBookingsRequest запрос на получение бронирований корта
type GetCourtBookingsRequest struct {
	CourtID         int64      `json:"courtId"`
	From            *time.Time `json:"from,omitempty"`            // Начало периода (опционально)
	To              *time.Time `json:"to,omitempty"`              // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отменённые бронирования
}

// Response модели

// PriceResponse снимок цены бронирования
type PriceResponse struct {
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	Slot     string  `json:"slot"`
	Source   string  `json:"source"`
	Cutoff   *string `json:"cutoff,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          string        `json:"id"`
	CourtID     int64         `json:"courtId"`
	UserID      *string       `json:"userId,omitempty"`
	ContactID   *string       `json:"contactId,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     time.Time     `json:"endTime"`
	BookingDate string        `json:"bookingDate"` // "2026-03-10"
	Status      string        `json:"status"`
	Title       *string       `json:"title,omitempty"`
	Price       PriceResponse `json:"price"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CourtResponse корт каталога
type CourtResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:          b.ID,
		CourtID:     b.CourtID,
		UserID:      b.UserID,
		ContactID:   b.ContactID,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		BookingDate: b.BookingDate,
		Status:      string(b.Status),
		Title:       b.Title,
		Price: PriceResponse{
			Amount:   b.Price.Amount,
			Currency: b.Price.Currency,
			Slot:     string(b.Price.Slot),
			Source:   string(b.Price.Source),
		},
		CancellationReason: b.CancellationReason,
		CancelledBy:        b.CancelledBy,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.Price.Cutoff != nil {
		cutoff := b.Price.Cutoff.String()
		resp.Price.Cutoff = &cutoff
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainCourt конвертирует корт в DTO
func FromDomainCourt(c *domain.Court) CourtResponse {
	return CourtResponse{ID: c.ID, Name: c.Name, Currency: c.Currency}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, bool) {
	s := domain.BookingStatus(status)
	return s, s.Valid()
}
