package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// PricingSlot is the half of the day a booking is priced in
type PricingSlot string

const (
	SlotAM PricingSlot = "AM"
	SlotPM PricingSlot = "PM"
)

// PricingSource is the rate origin recorded on a booking
type PricingSource string

const (
	SourceDaily    PricingSource = "DAILY"
	SourceRateCard PricingSource = "RATE_CARD"
)

// RateOrigin is where the resolver found the rate
type RateOrigin string

const (
	OriginDaily        RateOrigin = "DAILY"
	OriginCourtDefault RateOrigin = "COURT_DEFAULT"
)

// BookingSource maps a resolver origin to the source stored on the booking
func (o RateOrigin) BookingSource() PricingSource {
	if o == OriginDaily {
		return SourceDaily
	}
	return SourceRateCard
}

// PriceSnapshot is fixed at creation time and never recomputed
type PriceSnapshot struct {
	Amount   int64
	Currency string
	Slot     PricingSlot
	Source   PricingSource
	Cutoff   *types.TimeString
}

// HalfDayRate is an AM/PM price pair together with its split point.
// A nil price means the half is not configured.
type HalfDayRate struct {
	AmPrice  *int64
	PmPrice  *int64
	Currency string
	Cutoff   *types.TimeString
	Origin   RateOrigin
}

// PriceFor returns the hourly price for a half of the day
func (r HalfDayRate) PriceFor(slot PricingSlot) *int64 {
	if slot == SlotAM {
		return r.AmPrice
	}
	return r.PmPrice
}

// RateHistoryRecord is one version of a court's base rate, valid for
// [EffectiveFrom, EffectiveTo). A nil EffectiveTo marks the current record.
type RateHistoryRecord struct {
	ID            string
	CourtID       int64
	AmPrice       int64
	PmPrice       int64
	Currency      string
	PriceCutoff   *types.TimeString
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	SetByAdminID  *string
	CreatedAt     time.Time
}

// IsOpen returns true for the court's current record
func (r *RateHistoryRecord) IsOpen() bool {
	return r.EffectiveTo == nil
}

// Covers reports whether the record was in effect at the instant
func (r *RateHistoryRecord) Covers(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveTo == nil || at.Before(*r.EffectiveTo)
}

// DailyRateOverride replaces the base rate of a court for a single calendar date
type DailyRateOverride struct {
	ID       string
	CourtID  int64
	Date     string // YYYY-MM-DD
	AmPrice  *int64
	PmPrice  *int64
	Currency string
}
