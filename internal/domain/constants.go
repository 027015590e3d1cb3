package domain

import "github.com/m04kA/SMC-CourtBookingService/pkg/types"

// Default configuration values
const (
	DefaultOpenTime      types.TimeString = "07:00"
	DefaultCloseTime     types.TimeString = "23:00"
	DefaultSlotMinutes                    = 60
	DefaultCurrency                       = "CLP"
	DefaultGraceMinutes                   = 120
	DefaultHistoryLimit                   = 50
	MaxHistoryLimit                       = 200
	MaxCancellationItems                  = 10
	CancelPageSize                        = 3
)

// Business validation constants
const (
	MinSlotMinutes              = 15
	MaxSlotMinutes              = 240
	MaxTitleLength              = 120
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses список статусов, занимающих корт
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
