// Package tzclock converts between calendar dates, wall-clock times and
// absolute instants in one fixed IANA zone.
package tzclock

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

const (
	DateLayout  = "2006-01-02"
	DMYLayout   = "02-01-2006"
	DefaultZone = "America/Santiago"
)

var ErrInvalidDate = errors.New("tzclock: invalid date")

// Clock is bound to a single location; every calendar value it returns
// is expressed in that location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New loads the zone and uses the system clock.
func New(zone string) (*Clock, error) {
	return NewWithNow(zone, time.Now)
}

// NewWithNow is New with an injectable time source.
func NewWithNow(zone string, now func() time.Time) (*Clock, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("tzclock: load zone %q: %w", zone, err)
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now is the current instant rendered in the zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the zone's current calendar date (YYYY-MM-DD).
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// Tomorrow is the calendar day after Today.
func (c *Clock) Tomorrow() string {
	n := c.Now()
	return time.Date(n.Year(), n.Month(), n.Day()+1, 12, 0, 0, 0, c.loc).Format(DateLayout)
}

// ToInstant resolves a local date and HH:MM to an absolute instant.
// time.Date applies the zone offset in effect for that wall-clock value,
// so formatting the result back in the zone yields the same date and
// time. Wall-clock values skipped by a DST jump (local midnight on the
// spring-forward day) have no exact instant; callers only pass business
// hours, which never fall in the gap.
func (c *Clock) ToInstant(date string, hhmm types.TimeString) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	minutes := hhmm.Minutes()
	if minutes < 0 {
		return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidTimeString, hhmm)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, c.loc), nil
}

// DateOf renders an instant's calendar date in the zone.
func (c *Clock) DateOf(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// TimeOf renders an instant's wall-clock HH:MM in the zone.
func (c *Clock) TimeOf(t time.Time) types.TimeString {
	return types.NewTimeString(t.In(c.loc))
}

// MinuteOfDay is the minutes elapsed since local midnight at t.
func (c *Clock) MinuteOfDay(t time.Time) int {
	l := t.In(c.loc)
	return l.Hour()*60 + l.Minute()
}

// DayBounds returns [start of date, start of next date) as instants.
// The span is not always 24h around DST transitions.
func (c *Clock) DayBounds(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
	end := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, c.loc)
	return start, end, nil
}

// IsPast reports whether date is strictly before Today.
func (c *Clock) IsPast(date string) bool {
	return date < c.Today()
}

// ParseDate validates a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(DateLayout), nil
}

// ParseDMY converts a strict DD-MM-YYYY date into YYYY-MM-DD.
// Impossible dates such as 31-02-2026 are rejected.
func ParseDMY(s string) (string, error) {
	t, err := time.Parse(DMYLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.Format(DateLayout), nil
}

// FormatDMY converts YYYY-MM-DD into DD-MM-YYYY; invalid input is returned unchanged.
func FormatDMY(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(DMYLayout)
}
