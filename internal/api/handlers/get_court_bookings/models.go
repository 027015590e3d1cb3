package get_court_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// from/to принимаются в RFC3339.
func ToServiceRequest(
	courtID int64,
	fromStr string,
	toStr string,
	statusStr string,
	includeInactiveStr string,
) (*models.GetCourtBookingsRequest, error) {
	req := &models.GetCourtBookingsRequest{
		CourtID:         courtID,
		IncludeInactive: false, // По умолчанию только активные
	}

	if fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from value: %w", err)
		}
		req.From = &from
	}

	if toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to value: %w", err)
		}
		req.To = &to
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
