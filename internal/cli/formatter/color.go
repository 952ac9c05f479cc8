package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/timeledger/internal/domain"
)

// Palette. Green is for running and active things, red for admins and
// failures, yellow for warnings and money.
var (
	ColorGreen  = lipgloss.Color("#a3be8c")
	ColorYellow = lipgloss.Color("#ebcb8b")
	ColorRed    = lipgloss.Color("#bf616a")
	ColorBlue   = lipgloss.Color("#81a1c1")
	ColorPurple = lipgloss.Color("#b48ead")
	ColorDim    = lipgloss.Color("#7b8394")
	ColorFg     = lipgloss.Color("#e5e9f0")
	ColorHeader = lipgloss.Color("#88c0d0")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	styleBold  = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	roleStyles = map[domain.Role]lipgloss.Style{
		domain.RoleAdmin:     StyleRed,
		domain.RoleDeveloper: lipgloss.NewStyle().Foreground(ColorPurple),
	}
)

// RoleBadge colours a role name; plain users are left uncoloured.
func RoleBadge(r domain.Role) string {
	if s, ok := roleStyles[r]; ok {
		return s.Render(string(r))
	}
	return string(r)
}

func StatusPill(s domain.UserStatus) string {
	if s == domain.UserActive {
		return StyleGreen.Render("● active")
	}
	return StyleDim.Render("○ " + string(s))
}

func ArchivedPill(archived bool) string {
	if archived {
		return StyleDim.Render("✖ archived")
	}
	return StyleGreen.Render("● live")
}

// Header is an upper-cased title over a rule of the same width.
func Header(text string) string {
	title := strings.ToUpper(text)
	rule := strings.Repeat("─", lipgloss.Width(title))
	return StyleHeader.Render(title) + "\n" + StyleDim.Render(rule)
}

func Dim(text string) string { return StyleDim.Render(text) }

func Bold(text string) string { return styleBold.Render(text) }
