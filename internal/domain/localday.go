package domain

import (
	"fmt"
	"time"
)

// LocalDay is a calendar date as perceived by a user in some UTC offset.
type LocalDay struct {
	Year    int
	Month   time.Month
	Day     int
	Weekday time.Weekday
}

// LocalDate maps a UTC instant to the caller's calendar day. offsetMinutes
// is the number of minutes the local zone is behind UTC (positive west of
// Greenwich, +480 for UTC-8), the getTimezoneOffset() convention.
//
// The offset is applied once by shifting the instant; the shifted value is
// then read as UTC. Weekday derives from the date alone, so two entries on
// the same local date always agree regardless of time of day.
func LocalDate(instant time.Time, offsetMinutes int) LocalDay {
	local := instant.UTC().Add(-time.Duration(offsetMinutes) * time.Minute)
	y, m, d := local.Date()
	return NewLocalDay(y, m, d)
}

// NewLocalDay builds a LocalDay, normalising out-of-range fields the way
// time.Date does.
func NewLocalDay(year int, month time.Month, day int) LocalDay {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	y, m, d := t.Date()
	return LocalDay{Year: y, Month: m, Day: d, Weekday: t.Weekday()}
}

// ParseLocalDay parses a YYYY-MM-DD date.
func ParseLocalDay(s string) (LocalDay, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return LocalDay{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return NewLocalDay(t.Date()), nil
}

// Midnight returns the UTC instant at which the day begins for a user at
// offsetMinutes. LocalDate(d.Midnight(off), off) == d.
func (d LocalDay) Midnight(offsetMinutes int) time.Time {
	return d.date().Add(time.Duration(offsetMinutes) * time.Minute)
}

// AddDays returns the day n calendar days later.
func (d LocalDay) AddDays(n int) LocalDay {
	return NewLocalDay(d.Year, d.Month, d.Day+n)
}

func (d LocalDay) Before(o LocalDay) bool { return d.date().Before(o.date()) }
func (d LocalDay) After(o LocalDay) bool  { return d.date().After(o.date()) }
func (d LocalDay) Equal(o LocalDay) bool  { return d.date().Equal(o.date()) }

// Within reports whether d falls in [from, to], inclusive.
func (d LocalDay) Within(from, to LocalDay) bool {
	return !d.Before(from) && !d.After(to)
}

func (d LocalDay) String() string {
	return d.date().Format(time.DateOnly)
}

func (d LocalDay) date() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
