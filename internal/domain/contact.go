package domain

import "time"

// Contact is an external messaging identity keyed by its E.164 phone
type Contact struct {
	ID          string
	WaPhone     string
	DisplayName *string
	Timezone    string
	UserID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
