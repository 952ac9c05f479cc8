package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// FormatEntryList renders a user's entries. Manual entries show their
// recording time and a "manual" marker in place of a span.
func FormatEntryList(entries []*domain.TimeEntry, tasks TaskLabel, offsetMinutes int) string {
	if len(entries) == 0 {
		return Dim("No entries in this window.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		when := FormatInstant(e.EffectiveTime(), offsetMinutes)
		var span string
		switch s := mustSpan(e).(type) {
		case domain.Ongoing:
			span = StyleGreen.Render("running")
		case domain.Manual:
			span = Dim("manual")
		case domain.Completed:
			span = s.End.Sub(s.Start).Truncate(time.Second).String()
		default:
			span = StyleRed.Render("invalid")
		}
		rows = append(rows, []string{
			Dim(fmt.Sprintf("#%d", e.ID)),
			when,
			label(tasks, e.TaskID),
			span,
			FormatSeconds(domain.ElapsedSeconds(e)),
			e.Notes,
		})
	}
	return Table{
		Headers: []string{"ID", "WHEN", "TASK", "SPAN", "TIME", "NOTES"},
		Rows:    rows,
		Align:   []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}.Render()
}

func mustSpan(e *domain.TimeEntry) domain.Span {
	s, err := e.Span()
	if err != nil {
		return nil
	}
	return s
}
