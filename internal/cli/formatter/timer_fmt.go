package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timeledger/internal/app"
)

// TaskLabel resolves a task id to a display title.
type TaskLabel func(taskID int64) string

func label(l TaskLabel, taskID int64) string {
	if l != nil {
		if s := l(taskID); s != "" {
			return s
		}
	}
	return fmt.Sprintf("task #%d", taskID)
}

// FormatTimer renders the running timer, or an idle line when snap is nil.
func FormatTimer(snap *app.TimerSnapshot, tasks TaskLabel, offsetMinutes int) string {
	if snap == nil {
		return Dim("No timer running.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", StyleGreen.Render("● RUNNING"), Bold(label(tasks, snap.TaskID)))
	fmt.Fprintf(&b, "%s %s\n", Dim("Elapsed:"), StyleHeader.Render(FormatClock(snap.ElapsedSeconds)))
	fmt.Fprintf(&b, "%s %s\n", Dim("Started:"), FormatInstant(snap.StartTime, offsetMinutes))
	if snap.Notes != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Notes:  "), snap.Notes)
	}
	fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("timer #%d", snap.TimerID)))
	return b.String()
}

// FormatStarted confirms a timer start.
func FormatStarted(snap *app.TimerSnapshot, tasks TaskLabel, offsetMinutes int) string {
	return fmt.Sprintf("%s timer #%d on %s at %s\n",
		StyleGreen.Render("Started"), snap.TimerID, Bold(label(tasks, snap.TaskID)),
		FormatInstant(snap.StartTime, offsetMinutes))
}

// FormatStopped confirms a stop with the recorded duration.
func FormatStopped(stopped *app.StoppedTimer, tasks TaskLabel) string {
	return fmt.Sprintf("%s timer #%d on %s: %s\n",
		StyleYellow.Render("Stopped"), stopped.Entry.ID, Bold(label(tasks, stopped.Entry.TaskID)),
		StyleHeader.Render(FormatSeconds(stopped.DurationSeconds)))
}
