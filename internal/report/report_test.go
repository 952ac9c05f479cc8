package report

import (
	"testing"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func manualRow(userID, taskID, secs int64, createdAt time.Time) Row {
	e := domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: createdAt}
	e.SetSpan(domain.Manual{Seconds: secs})
	return Row{Entry: e, TaskTitle: "Task", ProjectID: 1, ProjectName: "Proj"}
}

func completedRow(userID, taskID int64, start, end time.Time) Row {
	e := domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: end}
	e.SetSpan(domain.Completed{Start: start, End: end})
	return Row{Entry: e, TaskTitle: "Task", ProjectID: 1, ProjectName: "Proj"}
}

func runningRow(userID, taskID int64, start time.Time) Row {
	e := domain.TimeEntry{UserID: userID, TaskID: taskID, CreatedAt: start}
	e.SetSpan(domain.Ongoing{Start: start})
	return Row{Entry: e, TaskTitle: "Task", ProjectID: 1, ProjectName: "Proj"}
}

// A 2h manual entry created at UTC midnight on Monday 4 March belongs to
// Sunday 3 March for a user at UTC-8.
func TestDailyTotals_ManualEntryInPST(t *testing.T) {
	created := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := []Row{manualRow(1, 7, 7200, created)}
	w := DayWindow(domain.NewLocalDay(2024, 3, 3), domain.NewLocalDay(2024, 3, 9), 480)

	got := DailyTotals(rows, 1, w, 480)
	assert.Equal(t, int64(7200), got[time.Sunday].TotalSeconds)
	assert.Zero(t, got[time.Monday].TotalSeconds)

	utc := DailyTotals(rows, 1, DayWindow(domain.NewLocalDay(2024, 3, 3), domain.NewLocalDay(2024, 3, 9), 0), 0)
	assert.Equal(t, int64(7200), utc[time.Monday].TotalSeconds, "without an offset the UTC day is used")
}

func TestDailyTotals_LabelsEveryWeekday(t *testing.T) {
	got := DailyTotals(nil, 1, Window{}, 0)
	for i, d := range got {
		assert.Equal(t, time.Weekday(i), d.Weekday)
		assert.Zero(t, d.TotalSeconds)
	}
}

func TestDailyTotals_SumMatchesElapsedOfQualifying(t *testing.T) {
	base := time.Date(2024, 3, 3, 6, 30, 0, 0, time.UTC)
	rows := []Row{
		manualRow(1, 1, 1800, base),
		completedRow(1, 2, base.Add(5*time.Hour), base.Add(7*time.Hour+15*time.Second)),
		completedRow(1, 2, base.Add(50*time.Hour), base.Add(51*time.Hour)),
		manualRow(1, 3, 600, base.Add(6*24*time.Hour)),
		runningRow(1, 1, base.Add(3*time.Hour)),
		manualRow(2, 1, 999, base),
	}
	archived := manualRow(1, 4, 5000, base)
	archived.Archived = true
	rows = append(rows, archived)
	outside := manualRow(1, 1, 4000, base.Add(8*24*time.Hour))
	rows = append(rows, outside)

	for _, off := range []int{-600, -60, 0, 300, 480} {
		w := DefaultWeek(base.Add(24*time.Hour), ptr(off))
		from, to := w.Days(off)

		var want int64
		for _, r := range rows {
			if Qualifies(r, 1) && domain.LocalDate(r.Entry.EffectiveTime(), off).Within(from, to) {
				want += domain.ElapsedSeconds(&r.Entry)
			}
		}
		var got int64
		for _, d := range DailyTotals(rows, 1, w, off) {
			got += d.TotalSeconds
		}
		assert.Equal(t, want, got, "offset %d", off)
		assert.Positive(t, got, "offset %d", off)
	}
}

func TestQualifies(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	archived := manualRow(1, 1, 60, now)
	archived.Archived = true
	invalid := Row{Entry: domain.TimeEntry{UserID: 1, CreatedAt: now}}

	assert.True(t, Qualifies(manualRow(1, 1, 60, now), 1))
	assert.True(t, Qualifies(manualRow(2, 1, 60, now), 0), "zero user accepts everyone")
	assert.False(t, Qualifies(manualRow(2, 1, 60, now), 1))
	assert.False(t, Qualifies(archived, 1))
	assert.False(t, Qualifies(runningRow(1, 1, now), 1))
	assert.False(t, Qualifies(invalid, 1))
}

func TestTaskTotals(t *testing.T) {
	sunday := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	a := manualRow(1, 10, 3600, sunday)
	a.TaskTitle, a.PayRate = "Alpha", ptr(30.0)
	b := completedRow(1, 10, sunday.Add(24*time.Hour), sunday.Add(25*time.Hour+30*time.Minute))
	b.TaskTitle, b.PayRate = "Alpha", ptr(30.0)
	c := manualRow(1, 11, 900, sunday)
	c.TaskTitle = "Beta"

	w := DayWindow(domain.NewLocalDay(2024, 3, 3), domain.NewLocalDay(2024, 3, 9), 0)
	got := TaskTotals([]Row{c, a, b}, 1, w, 0)
	require.Len(t, got, 2)

	assert.Equal(t, int64(10), got[0].TaskID)
	assert.Equal(t, int64(3600+5400), got[0].TotalSeconds)
	assert.Equal(t, int64(3600), got[0].DayTotals[time.Sunday])
	assert.Equal(t, int64(5400), got[0].DayTotals[time.Monday])
	assert.InDelta(t, 75.0, got[0].Cost, 1e-9)

	assert.Equal(t, "Beta", got[1].TaskTitle)
	assert.Zero(t, got[1].Cost, "nil pay rate costs nothing")
}

func TestProjectTotals_RawRange(t *testing.T) {
	// 23:30 UTC on Saturday is inside a UTC week that ends 23:59:59 Saturday.
	late := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC)
	r1 := manualRow(1, 1, 3600, late)
	r1.PayRate = ptr(20.0)
	r2 := manualRow(1, 1, 3600, early)
	r2.PayRate = ptr(20.0)
	r3 := manualRow(2, 2, 1800, late)
	r3.ProjectID, r3.ProjectName, r3.PayRate = 2, "Other", ptr(10.0)

	w := DayWindow(domain.NewLocalDay(2024, 3, 3), domain.NewLocalDay(2024, 3, 9), 0)

	mine := ProjectTotals([]Row{r1, r2, r3}, 1, w)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(3600), mine[0].TotalSeconds)
	assert.InDelta(t, 20.0, mine[0].Cost, 1e-9)

	everyone := ProjectTotals([]Row{r1, r2, r3}, 0, w)
	require.Len(t, everyone, 2)
	assert.Equal(t, "Other", everyone[0].ProjectName)
	assert.InDelta(t, 5.0, everyone[0].Cost, 1e-9)
}

// The local-day family and the raw-range family disagree at day edges.
func TestReportFamiliesDifferAtBoundary(t *testing.T) {
	// Sunday 01:00 UTC is still Saturday for a UTC-8 user.
	r := manualRow(1, 1, 600, time.Date(2024, 3, 3, 1, 0, 0, 0, time.UTC))
	w := Window{
		Start: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC),
	}

	var daily int64
	for _, d := range DailyTotals([]Row{r}, 1, w, 480) {
		daily += d.TotalSeconds
	}
	projects := ProjectTotals([]Row{r}, 1, w)

	assert.Equal(t, int64(600), daily, "window bounds shift by the same offset, so Saturday 2 March is in range")
	require.Len(t, projects, 1)
	assert.Equal(t, int64(600), projects[0].TotalSeconds)

	// Saturday 9 March 23:30 in UTC-8 is already Sunday 10 March in UTC.
	r2 := manualRow(1, 1, 600, time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC))
	daily = 0
	for _, d := range DailyTotals([]Row{r2}, 1, w, 480) {
		daily += d.TotalSeconds
	}
	assert.Equal(t, int64(600), daily, "local Saturday 9 March 23:30 falls in the local window")
	assert.Empty(t, ProjectTotals([]Row{r2}, 1, w), "raw instant is after the UTC end")
}

func TestCost(t *testing.T) {
	tests := []struct {
		name string
		secs int64
		rate *float64
		want float64
	}{
		{"nil rate", 3600, nil, 0},
		{"one hour", 3600, ptr(45.0), 45},
		{"rounded to cents", 100, ptr(33.33), 0.93},
		{"zero seconds", 0, ptr(100.0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cost(tt.secs, tt.rate), 1e-9)
		})
	}
}

// Rounding happens per entry, so three entries of 0.333… each sum to 0.99
// rather than rounding 1.0 once at the end.
func TestCost_RoundsAtSummation(t *testing.T) {
	at := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	var rows []Row
	for i := 0; i < 3; i++ {
		r := manualRow(1, 1, 12, at)
		r.PayRate = ptr(100.0)
		rows = append(rows, r)
	}
	got := ProjectTotals(rows, 1, DayWindow(domain.NewLocalDay(2024, 3, 3), domain.NewLocalDay(2024, 3, 9), 0))
	require.Len(t, got, 1)
	assert.InDelta(t, 0.99, got[0].Cost, 1e-9)
}

func TestWithholdCost(t *testing.T) {
	tasks := []TaskTotal{{TaskID: 1, Cost: 12.5}, {TaskID: 2, Cost: 3}}
	WithholdCost(tasks)
	for _, tt := range tasks {
		assert.Zero(t, tt.Cost)
	}
	projects := []ProjectTotal{{ProjectID: 1, Cost: 9}}
	WithholdCost(projects)
	assert.Zero(t, projects[0].Cost)
}
