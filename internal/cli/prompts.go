package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/timeledger/internal/cli/formatter"
)

// huhTheme recolours huh's base theme with the report palette: the
// focused field uses the header accent, everything blurred is dimmed.
func huhTheme() *huh.Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	t := huh.ThemeBase()

	f := &t.Focused
	f.Title = fg(formatter.ColorHeader).Bold(true)
	f.Description = fg(formatter.ColorDim)
	f.SelectSelector = fg(formatter.ColorHeader)
	f.SelectedOption = fg(formatter.ColorGreen)
	f.UnselectedOption = fg(formatter.ColorFg)
	f.FocusedButton = fg(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	f.BlurredButton = fg(formatter.ColorDim).Padding(0, 1)

	dim := fg(formatter.ColorDim)
	t.Blurred.Title = dim
	t.Blurred.SelectSelector = dim
	t.Blurred.SelectedOption = dim
	t.Blurred.UnselectedOption = dim
	return t
}

// taskPickerForm builds a select over the tasks the user can start a timer
// on. It returns nil when there is nothing to pick.
func taskPickerForm(ctx context.Context, a *App, userID int64, result *int64) (*huh.Form, error) {
	tasks, err := a.Tasks.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	labels := taskLabels(ctx, a)
	options := make([]huh.Option[int64], 0, len(tasks))
	for _, t := range tasks {
		options = append(options, huh.NewOption(fmt.Sprintf("#%d  %s", t.ID, labels(t.ID)), t.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Which task?").
				Options(options...).
				Value(result),
		),
	).WithTheme(huhTheme()).WithShowHelp(false), nil
}

// confirmForm builds a yes/no confirmation.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}
