// Package report aggregates time entries into day, task and project totals.
// It is pure: callers load rows and hand them in.
//
// Two families of report exist and deliberately compare dates differently.
// DailyTotals and TaskTotals bucket by local calendar day, so the window
// bounds and each entry's effective time are both reduced to local dates
// before comparison. ProjectTotals filters by raw instant against the
// window. The two can disagree near day boundaries.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// Row is one time entry with the context needed to aggregate it.
type Row struct {
	Entry       domain.TimeEntry
	TaskTitle   string
	ProjectID   int64
	ProjectName string
	PayRate     *float64
	// Archived is set when the owning task, project or client is archived.
	Archived bool
}

// DayTotal is the sum for one local weekday, 0 = Sunday.
type DayTotal struct {
	Weekday      time.Weekday
	TotalSeconds int64
}

type TaskTotal struct {
	TaskID       int64
	TaskTitle    string
	ProjectID    int64
	ProjectName  string
	TotalSeconds int64
	DayTotals    [7]int64
	Cost         float64
}

type ProjectTotal struct {
	ProjectID    int64
	ProjectName  string
	TotalSeconds int64
	Cost         float64
}

// Qualifies reports whether a row may count toward totals for userID: it
// belongs to the user, nothing above it is archived and it is not a running
// timer. userID 0 accepts every user.
func Qualifies(r Row, userID int64) bool {
	if userID != 0 && r.Entry.UserID != userID {
		return false
	}
	if r.Archived || r.Entry.IsOngoing() {
		return false
	}
	_, err := r.Entry.Span()
	return err == nil
}

// DailyTotals sums qualifying rows per local weekday.
func DailyTotals(rows []Row, userID int64, w Window, offsetMinutes int) [7]DayTotal {
	var out [7]DayTotal
	for i := range out {
		out[i].Weekday = time.Weekday(i)
	}
	from, to := w.Days(offsetMinutes)
	for _, r := range rows {
		day, ok := bucket(r, userID, from, to, offsetMinutes)
		if !ok {
			continue
		}
		out[day.Weekday].TotalSeconds += domain.ElapsedSeconds(&r.Entry)
	}
	return out
}

// TaskTotals sums qualifying rows per task, with a weekday breakdown and a
// cost at each row's pay rate.
func TaskTotals(rows []Row, userID int64, w Window, offsetMinutes int) []TaskTotal {
	from, to := w.Days(offsetMinutes)
	byTask := make(map[int64]*TaskTotal)
	for _, r := range rows {
		day, ok := bucket(r, userID, from, to, offsetMinutes)
		if !ok {
			continue
		}
		secs := domain.ElapsedSeconds(&r.Entry)
		t, ok := byTask[r.Entry.TaskID]
		if !ok {
			t = &TaskTotal{
				TaskID:      r.Entry.TaskID,
				TaskTitle:   r.TaskTitle,
				ProjectID:   r.ProjectID,
				ProjectName: r.ProjectName,
			}
			byTask[r.Entry.TaskID] = t
		}
		t.TotalSeconds += secs
		t.DayTotals[day.Weekday] += secs
		t.Cost = addCost(t.Cost, Cost(secs, r.PayRate))
	}

	out := make([]TaskTotal, 0, len(byTask))
	for _, t := range byTask {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		if out[i].TaskTitle != out[j].TaskTitle {
			return out[i].TaskTitle < out[j].TaskTitle
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// ProjectTotals sums qualifying rows per project. Rows are matched on their
// raw effective instant, without local-day conversion.
func ProjectTotals(rows []Row, userID int64, w Window) []ProjectTotal {
	byProject := make(map[int64]*ProjectTotal)
	for _, r := range rows {
		if !Qualifies(r, userID) || !w.Contains(r.Entry.EffectiveTime()) {
			continue
		}
		secs := domain.ElapsedSeconds(&r.Entry)
		p, ok := byProject[r.ProjectID]
		if !ok {
			p = &ProjectTotal{ProjectID: r.ProjectID, ProjectName: r.ProjectName}
			byProject[r.ProjectID] = p
		}
		p.TotalSeconds += secs
		p.Cost = addCost(p.Cost, Cost(secs, r.PayRate))
	}

	out := make([]ProjectTotal, 0, len(byProject))
	for _, p := range byProject {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// Cost is hours × rate for one entry, rounded to cents. A nil rate is zero.
func Cost(seconds int64, rate *float64) float64 {
	r := domain.Float64FromPtrWithDefault(0, rate)
	return round2(float64(seconds) / 3600 * r)
}

// WithholdCost zeroes every cost in place. The fields stay so the shape of
// the result does not depend on the caller's role.
func WithholdCost[T TaskTotal | ProjectTotal](totals []T) {
	for i := range totals {
		switch t := any(&totals[i]).(type) {
		case *TaskTotal:
			t.Cost = 0
		case *ProjectTotal:
			t.Cost = 0
		}
	}
}

func bucket(r Row, userID int64, from, to domain.LocalDay, offsetMinutes int) (domain.LocalDay, bool) {
	if !Qualifies(r, userID) {
		return domain.LocalDay{}, false
	}
	day := domain.LocalDate(r.Entry.EffectiveTime(), offsetMinutes)
	return day, day.Within(from, to)
}

// addCost sums two cent amounts and rounds again, so float error never
// accumulates across many entries.
func addCost(a, b float64) float64 {
	return round2(a + b)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
