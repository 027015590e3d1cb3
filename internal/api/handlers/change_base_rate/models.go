package change_base_rate

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
	changeBaseRate "github.com/m04kA/SMC-CourtBookingService/internal/usecase/change_base_rate"
)

// ChangeBaseRateRequest HTTP request model
type ChangeBaseRateRequest struct {
	AmPrice      *int64  `json:"amPrice"`
	PmPrice      *int64  `json:"pmPrice"`
	Currency     *string `json:"currency,omitempty"`
	Cutoff       *string `json:"cutoff,omitempty"` // "HH:MM"
	SetByAdminID *string `json:"setByAdminId,omitempty"`
}

// ChangeBaseRateResponse HTTP response model
type ChangeBaseRateResponse struct {
	Record   *models.RateRecordResponse `json:"record"`
	Previous *models.RateRecordResponse `json:"previous,omitempty"`
}

// Complete обе цены обязательны
func (r *ChangeBaseRateRequest) Complete() bool {
	return r.AmPrice != nil && r.PmPrice != nil
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *ChangeBaseRateRequest) ToUseCaseRequest(courtID int64) *changeBaseRate.Request {
	return &changeBaseRate.Request{
		CourtID:      courtID,
		AmPrice:      *r.AmPrice,
		PmPrice:      *r.PmPrice,
		Currency:     r.Currency,
		Cutoff:       r.Cutoff,
		SetByAdminID: r.SetByAdminID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *changeBaseRate.Response) *ChangeBaseRateResponse {
	return &ChangeBaseRateResponse{
		Record:   models.FromDomainRecord(resp.Record),
		Previous: models.FromDomainRecord(resp.Previous),
	}
}
