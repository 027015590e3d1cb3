package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// RateRecordResponse запись истории базового тарифа
type RateRecordResponse struct {
	ID            string     `json:"id"`
	CourtID       int64      `json:"courtId"`
	AmPrice       int64      `json:"amPrice"`
	PmPrice       int64      `json:"pmPrice"`
	Currency      string     `json:"currency"`
	PriceCutoff   *string    `json:"priceCutoff,omitempty"` // "HH:MM"
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"` // nil = текущая запись
	SetByAdminID  *string    `json:"setByAdminId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// RateHistoryResponse история тарифов, от новых к старым
type RateHistoryResponse struct {
	Records []RateRecordResponse `json:"records"`
}

// DailyOverrideResponse переопределение тарифа на дату
type DailyOverrideResponse struct {
	ID       string `json:"id"`
	CourtID  int64  `json:"courtId"`
	Date     string `json:"date"`
	AmPrice  *int64 `json:"amPrice,omitempty"`
	PmPrice  *int64 `json:"pmPrice,omitempty"`
	Currency string `json:"currency"`
}

// FromDomainRecord конвертирует запись истории в DTO
func FromDomainRecord(r *domain.RateHistoryRecord) *RateRecordResponse {
	if r == nil {
		return nil
	}
	resp := &RateRecordResponse{
		ID:            r.ID,
		CourtID:       r.CourtID,
		AmPrice:       r.AmPrice,
		PmPrice:       r.PmPrice,
		Currency:      r.Currency,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		SetByAdminID:  r.SetByAdminID,
		CreatedAt:     r.CreatedAt,
	}
	if r.PriceCutoff != nil {
		c := r.PriceCutoff.String()
		resp.PriceCutoff = &c
	}
	return resp
}

// FromDomainHistory конвертирует список записей
func FromDomainHistory(records []*domain.RateHistoryRecord) *RateHistoryResponse {
	resp := &RateHistoryResponse{Records: make([]RateRecordResponse, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, *FromDomainRecord(r))
	}
	return resp
}

// FromDomainOverride конвертирует переопределение в DTO
func FromDomainOverride(o *domain.DailyRateOverride) *DailyOverrideResponse {
	return &DailyOverrideResponse{
		ID:       o.ID,
		CourtID:  o.CourtID,
		Date:     o.Date,
		AmPrice:  o.AmPrice,
		PmPrice:  o.PmPrice,
		Currency: o.Currency,
	}
}
