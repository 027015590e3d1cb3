package domain

import "github.com/m04kA/SMC-CourtBookingService/pkg/types"

// Court is a bookable unit. Default prices apply when the rate ledger is empty.
type Court struct {
	ID             int64
	Name           string
	IsActive       bool
	Currency       string
	DefaultAmPrice *int64
	DefaultPmPrice *int64
	PriceCutoff    *types.TimeString
}
