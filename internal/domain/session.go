package domain

import "github.com/m04kA/SMC-CourtBookingService/pkg/types"

// SessionStep is a state of the conversational flow
type SessionStep string

const (
	StepIdle               SessionStep = "idle"
	StepChooseCourt        SessionStep = "choose_court"
	StepChooseDate         SessionStep = "choose_date"
	StepAwaitingCustomDate SessionStep = "awaiting_custom_date"
	StepChooseTime         SessionStep = "choose_time"
	StepAskName            SessionStep = "ask_name"
	StepCancelChoose       SessionStep = "cancel_choose"
	StepCancelConfirm      SessionStep = "cancel_confirm"
)

// Session is the per-phone conversation state. It is serialized as JSON
// by the session store, so field tags are part of the storage format.
type Session struct {
	Phone           string           `json:"phone"`
	Step            SessionStep      `json:"step"`
	CourtID         int64            `json:"courtId,omitempty"`
	Date            string           `json:"date,omitempty"` // YYYY-MM-DD
	Time            types.TimeString `json:"time,omitempty"`
	ReservationName string           `json:"reservationName,omitempty"`
	ContactID       string           `json:"contactId,omitempty"`
	ContactName     string           `json:"contactName,omitempty"`

	CancelOptions     []string `json:"cancelOptions,omitempty"`
	CancelPage        int      `json:"cancelPage,omitempty"`
	BookingIDToCancel string   `json:"bookingIdToCancel,omitempty"`
}

// NewSession returns an idle session for the phone
func NewSession(phone string) *Session {
	return &Session{Phone: phone, Step: StepIdle}
}

// Clone returns a deep copy so transitions never mutate the loaded value
func (s *Session) Clone() *Session {
	c := *s
	if s.CancelOptions != nil {
		c.CancelOptions = append([]string(nil), s.CancelOptions...)
	}
	return &c
}

// HasCancelOption reports whether id was offered in the cancellation list
func (s *Session) HasCancelOption(id string) bool {
	for _, opt := range s.CancelOptions {
		if opt == id {
			return true
		}
	}
	return false
}
