package domain

import (
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// BusinessHours describes the daily slot grid shared by all courts
type BusinessHours struct {
	Open        types.TimeString
	Close       types.TimeString
	SlotMinutes int
}

// DefaultBusinessHours returns 07:00-23:00 with 60-minute slots
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Open:        DefaultOpenTime,
		Close:       DefaultCloseTime,
		SlotMinutes: DefaultSlotMinutes,
	}
}

// Validate checks that the grid can hold at least one slot
func (h BusinessHours) Validate() error {
	if err := h.Open.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrValidation, err)
	}
	if err := h.Close.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrValidation, err)
	}
	if h.SlotMinutes < MinSlotMinutes || h.SlotMinutes > MaxSlotMinutes {
		return fmt.Errorf("%w: slot minutes must be in [%d, %d]", ErrValidation, MinSlotMinutes, MaxSlotMinutes)
	}
	if !h.Open.IsBefore(h.Close) {
		return fmt.Errorf("%w: open time must be before close time", ErrValidation)
	}
	return nil
}
