package domain

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval is non-empty
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Overlaps uses half-open semantics: intervals that only touch do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Minutes returns the interval length in whole minutes
func (i Interval) Minutes() int64 {
	return int64(i.End.Sub(i.Start) / time.Minute)
}
