package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/report"
)

const dailyBarWidth = 24

var weekdayOrder = [7]time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

func windowLine(w report.Window, offsetMinutes int) string {
	from, to := w.Days(offsetMinutes)
	return Dim(fmt.Sprintf("%s → %s (%s)", from, to, ZoneName(offsetMinutes)))
}

// FormatDailyReport renders one bar per weekday, scaled to the busiest day.
func FormatDailyReport(rep *app.DailyReport) string {
	var max, total int64
	for _, d := range rep.Days {
		total += d.TotalSeconds
		if d.TotalSeconds > max {
			max = d.TotalSeconds
		}
	}

	rows := make([][]string, 0, 7)
	for _, wd := range weekdayOrder {
		d := rep.Days[wd]
		rows = append(rows, []string{
			wd.String()[:3],
			RenderBar(d.TotalSeconds, max, dailyBarWidth),
			FormatSeconds(d.TotalSeconds),
		})
	}
	table := Table{
		Headers: []string{"DAY", "", "TIME"},
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignLeft, AlignRight},
		Footer:  []string{Bold("Total"), "", Bold(FormatSeconds(total))},
	}
	return RenderBox("Daily totals", windowLine(rep.Window, rep.OffsetMinutes)+"\n\n"+table.Render())
}

// FormatTaskReport renders per-task totals with a weekday breakdown.
func FormatTaskReport(rep *app.TaskReport) string {
	if len(rep.Tasks) == 0 {
		return RenderBox("Task totals", windowLine(rep.Window, rep.OffsetMinutes)+"\n\n"+Dim("No time recorded."))
	}

	headers := []string{"PROJECT", "TASK"}
	align := []Align{AlignLeft, AlignLeft}
	for _, wd := range weekdayOrder {
		headers = append(headers, strings.ToUpper(wd.String()[:2]))
		align = append(align, AlignRight)
	}
	headers = append(headers, "HOURS", "COST")
	align = append(align, AlignRight, AlignRight)

	var total int64
	var cost float64
	rows := make([][]string, 0, len(rep.Tasks))
	for _, t := range rep.Tasks {
		row := []string{t.ProjectName, Bold(t.TaskTitle)}
		for _, wd := range weekdayOrder {
			secs := t.DayTotals[wd]
			cell := Dim("·")
			if secs > 0 {
				cell = FormatHours(secs)
			}
			row = append(row, cell)
		}
		row = append(row, FormatHours(t.TotalSeconds), FormatCost(t.Cost, rep.CostVisible))
		rows = append(rows, row)
		total += t.TotalSeconds
		cost += t.Cost
	}

	footer := make([]string, len(headers))
	footer[0] = Bold("Total")
	footer[len(footer)-2] = Bold(FormatHours(total))
	footer[len(footer)-1] = Bold(FormatCost(cost, rep.CostVisible))

	table := Table{Headers: headers, Rows: rows, Align: align, Footer: footer}
	return RenderBox("Task totals", windowLine(rep.Window, rep.OffsetMinutes)+"\n\n"+table.Render())
}

// FormatProjectReport renders per-project totals. The window is shown in
// UTC since project totals match raw instants.
func FormatProjectReport(rep *app.ProjectReport) string {
	head := Dim(fmt.Sprintf("%s → %s",
		rep.Window.Start.UTC().Format(time.RFC3339), rep.Window.End.UTC().Format(time.RFC3339)))
	if len(rep.Projects) == 0 {
		return RenderBox("Project totals", head+"\n\n"+Dim("No time recorded."))
	}

	var total int64
	var cost float64
	rows := make([][]string, 0, len(rep.Projects))
	for _, p := range rep.Projects {
		rows = append(rows, []string{Bold(p.ProjectName), FormatSeconds(p.TotalSeconds), FormatCost(p.Cost, rep.CostVisible)})
		total += p.TotalSeconds
		cost += p.Cost
	}
	table := Table{
		Headers: []string{"PROJECT", "TIME", "COST"},
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignRight, AlignRight},
		Footer:  []string{Bold("Total"), Bold(FormatSeconds(total)), Bold(FormatCost(cost, rep.CostVisible))},
	}
	return RenderBox("Project totals", head+"\n\n"+table.Render())
}
