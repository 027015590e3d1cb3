package get_available_slots

import (
	getAvailableSlots "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	CourtID     int64    `json:"courtId"`
	Date        string   `json:"date"`
	SlotMinutes int      `json:"slotMinutes"`
	Slots       []string `json:"slots"` // "HH:MM", по возрастанию
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		CourtID:     resp.CourtID,
		Date:        resp.Date,
		SlotMinutes: resp.SlotMinutes,
		Slots:       slots,
	}
}
