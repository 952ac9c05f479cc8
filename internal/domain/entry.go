package domain

import (
	"fmt"
	"time"
)

// TimeEntry is the flat, nullable-field shape of one unit of recorded work
// as it is stored. Engine code works on Span instead.
type TimeEntry struct {
	ID                    int64
	UserID                int64
	TaskID                int64
	StartTime             *time.Time
	EndTime               *time.Time
	ManualDurationSeconds *int64
	Notes                 string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Span is the duration representation of a time entry: exactly one of
// Ongoing, Manual or Completed.
type Span interface {
	isSpan()
}

// Ongoing is a running timer.
type Ongoing struct {
	Start time.Time
}

// Manual is a duration recorded directly, without timestamps.
type Manual struct {
	Seconds int64
}

// Completed is a finished start/end pair.
type Completed struct {
	Start time.Time
	End   time.Time
}

func (Ongoing) isSpan()   {}
func (Manual) isSpan()    {}
func (Completed) isSpan() {}

// IsOngoing reports whether the entry is a running timer: a start time, no
// end time and no manual duration.
func (e *TimeEntry) IsOngoing() bool {
	return e.StartTime != nil && e.EndTime == nil && e.ManualDurationSeconds == nil
}

// Normalize rewrites legacy records that carry a manual duration alongside
// timestamps: the manual duration wins and the timestamps are cleared.
// Returns true when the entry was changed.
func Normalize(e *TimeEntry) bool {
	if e.ManualDurationSeconds == nil {
		return false
	}
	if e.StartTime == nil && e.EndTime == nil {
		return false
	}
	e.StartTime = nil
	e.EndTime = nil
	return true
}

// Span converts the stored record into its duration representation. The
// receiver is not modified; legacy shapes are normalized on a copy.
func (e *TimeEntry) Span() (Span, error) {
	c := *e
	Normalize(&c)

	switch {
	case c.ManualDurationSeconds != nil:
		if *c.ManualDurationSeconds < 0 {
			return nil, fmt.Errorf("entry %d: negative manual duration: %w", e.ID, ErrInvalidEntry)
		}
		return Manual{Seconds: *c.ManualDurationSeconds}, nil
	case c.StartTime != nil && c.EndTime != nil:
		return Completed{Start: *c.StartTime, End: *c.EndTime}, nil
	case c.StartTime != nil:
		return Ongoing{Start: *c.StartTime}, nil
	default:
		return nil, fmt.Errorf("entry %d: %w", e.ID, ErrInvalidEntry)
	}
}

// SetSpan writes s back into the flat representation.
func (e *TimeEntry) SetSpan(s Span) {
	e.StartTime, e.EndTime, e.ManualDurationSeconds = nil, nil, nil
	switch v := s.(type) {
	case Ongoing:
		start := v.Start
		e.StartTime = &start
	case Manual:
		secs := v.Seconds
		e.ManualDurationSeconds = &secs
	case Completed:
		start, end := v.Start, v.End
		e.StartTime = &start
		e.EndTime = &end
	}
}

// ElapsedSeconds is the canonical completed duration of an entry in whole
// seconds. Ongoing timers and records without a start time count as zero;
// use RunningSeconds for a live timer.
func ElapsedSeconds(e *TimeEntry) int64 {
	s, err := e.Span()
	if err != nil {
		return 0
	}
	switch v := s.(type) {
	case Manual:
		return v.Seconds
	case Completed:
		return floorSeconds(v.End.Sub(v.Start))
	default:
		return 0
	}
}

// RunningSeconds is the live elapsed time of a timer started at start,
// measured against the server clock reading now.
func RunningSeconds(start, now time.Time) int64 {
	return floorSeconds(now.Sub(start))
}

// EffectiveTime is the instant used to place an entry on the calendar: its
// start time, or its creation time for manual entries.
func (e *TimeEntry) EffectiveTime() time.Time {
	if e.StartTime != nil && e.ManualDurationSeconds == nil {
		return *e.StartTime
	}
	return e.CreatedAt
}

func floorSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
