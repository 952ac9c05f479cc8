package report

import (
	"errors"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// Window is an inclusive reporting range of UTC instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// ErrEmptyWindow is returned by Validate when End precedes Start.
var ErrEmptyWindow = errors.New("window end precedes start")

func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return ErrEmptyWindow
	}
	return nil
}

// Contains reports whether t lies in [Start, End] by raw instant comparison.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the first and last local day the window covers at offsetMinutes.
func (w Window) Days(offsetMinutes int) (domain.LocalDay, domain.LocalDay) {
	return domain.LocalDate(w.Start, offsetMinutes), domain.LocalDate(w.End, offsetMinutes)
}

// DayWindow spans whole local days from through to, inclusive, for a user at
// offsetMinutes. The end is one second before the following midnight.
func DayWindow(from, to domain.LocalDay, offsetMinutes int) Window {
	return Window{
		Start: from.Midnight(offsetMinutes),
		End:   to.AddDays(1).Midnight(offsetMinutes).Add(-time.Second),
	}
}

// DefaultWeek is the week containing now, Sunday 00:00:00 to Saturday
// 23:59:59 on the caller's calendar. Without an offset the week is the UTC
// one, matching the UTC day bucketing OffsetOrZero falls back to.
func DefaultWeek(now time.Time, offsetMinutes *int) Window {
	off := OffsetOrZero(offsetMinutes)
	today := domain.LocalDate(now, off)
	sunday := today.AddDays(-int(today.Weekday))
	return DayWindow(sunday, sunday.AddDays(6), off)
}

// OffsetOrZero applies the UTC fallback for callers that did not send an
// offset. Day bucketing is then by UTC day.
func OffsetOrZero(offsetMinutes *int) int {
	if offsetMinutes == nil {
		return 0
	}
	return *offsetMinutes
}
