package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + strings.TrimRight(content, "\n"))
	}
	return boxStyle.Render(strings.TrimRight(content, "\n"))
}

// FormatSeconds renders a duration as "2h 30m", "45m" or "30s". Seconds
// are only shown under a minute.
func FormatSeconds(secs int64) string {
	if secs <= 0 {
		return "0m"
	}
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// FormatClock renders elapsed seconds as H:MM:SS for live timers.
func FormatClock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatHours renders seconds as decimal hours, "2.50".
func FormatHours(secs int64) string {
	return fmt.Sprintf("%.2f", float64(secs)/3600)
}

// FormatCost renders a cost, or a dash when costs are withheld.
func FormatCost(cost float64, visible bool) string {
	if !visible {
		return Dim("--")
	}
	return fmt.Sprintf("%.2f", cost)
}

// FormatInstant renders t in the caller's zone, given as minutes behind UTC.
func FormatInstant(t time.Time, offsetMinutes int) string {
	zone := time.FixedZone(ZoneName(offsetMinutes), -offsetMinutes*60)
	return t.In(zone).Format("Mon Jan 2 15:04")
}

// ZoneName renders an offset in minutes behind UTC as "UTC-8" or
// "UTC+5:30".
func ZoneName(offsetMinutes int) string {
	if offsetMinutes == 0 {
		return "UTC"
	}
	east := -offsetMinutes
	sign := "+"
	if east < 0 {
		sign = "-"
		east = -east
	}
	if east%60 == 0 {
		return fmt.Sprintf("UTC%s%d", sign, east/60)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, east/60, east%60)
}
