package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/config"
	"github.com/alexanderramin/timeledger/internal/server"
	"github.com/alexanderramin/timeledger/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Timers      service.TimerService
	Entries     service.EntryService
	Reports     service.ReportService
	Access      service.AccessService
	Assignments service.AssignmentService
	Users       service.UserService
	Projects    service.ProjectService
	Tasks       service.TaskService
	Teams       service.TeamService
	Subtasks    service.SubtaskService
	Imports     service.ImportService

	Config config.Config
	Logger *slog.Logger

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool
	// Now is the wall clock for CLI-side defaults. Nil means time.Now.
	Now func() time.Time

	// Set by persistent flags.
	as string
	tz offsetFlag
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) serverServices() server.Services {
	return server.Services{
		Timers:      a.Timers,
		Entries:     a.Entries,
		Reports:     a.Reports,
		Access:      a.Access,
		Assignments: a.Assignments,
	}
}

// NewRootCmd creates the top-level "timeledger" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timeledger",
		Short:         "Team time tracking: timers, manual entries and weekly reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.tz = offsetFlag{now: a.Now}
	root.PersistentFlags().StringVar(&a.as, "as", "", "Act as this user (name or id); defaults to TIMELEDGER_USER")
	root.PersistentFlags().Var(&a.tz, "tz", "UTC offset for day boundaries: minutes behind UTC (480), UTC-8, UTC+5:30 or local")

	root.AddCommand(
		newServeCmd(a),
		newTimerCmd(a),
		newEntryCmd(a),
		newReportCmd(a),
		newTaskCmd(a),
		newUserCmd(a),
		newProjectCmd(a),
		newTeamCmd(a),
		newSubtaskCmd(a),
	)

	return root
}
