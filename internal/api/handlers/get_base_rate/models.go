package get_base_rate

import (
	"time"
)

// parseAt разбирает query параметр at (RFC3339); пустой - текущий момент
func parseAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, raw)
}
