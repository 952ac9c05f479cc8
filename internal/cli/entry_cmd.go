package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/cli/formatter"
	"github.com/alexanderramin/timeledger/internal/domain"
	"github.com/alexanderramin/timeledger/internal/report"
)

func newEntryCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entry",
		Aliases: []string{"entries"},
		Short:   "Log, list and remove time entries",
	}

	cmd.AddCommand(
		newEntryLogCmd(a),
		newEntryListCmd(a),
		newEntryRemoveCmd(a),
		newEntryNormalizeCmd(a),
	)

	return cmd
}

func newEntryLogCmd(a *App) *cobra.Command {
	var (
		duration   time.Duration
		seconds    int64
		start, end string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "log TASK_ID",
		Short: "Record finished work as a duration or a start/end pair",
		Example: `  timeledger entry log 12 --duration 1h30m
  timeledger entry log 12 --start 09:00 --end 10:15 --notes "standup"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			taskID, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}

			req := app.LogEntryRequest{UserID: u.ID, TaskID: taskID, Notes: notes}
			switch {
			case cmd.Flags().Changed("duration") && cmd.Flags().Changed("seconds"):
				return errors.New("use either --duration or --seconds, not both")
			case cmd.Flags().Changed("duration"):
				secs := int64(duration / time.Second)
				req.Seconds = &secs
			case cmd.Flags().Changed("seconds"):
				req.Seconds = &seconds
			}
			if start != "" {
				t, err := a.parseInstant(start)
				if err != nil {
					return err
				}
				req.Start = &t
			}
			if end != "" {
				t, err := a.parseInstant(end)
				if err != nil {
					return err
				}
				req.End = &t
			}

			e, err := a.Entries.Log(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s (entry #%d)\n",
				formatter.StyleGreen.Render("Logged"),
				formatter.FormatSeconds(domain.ElapsedSeconds(e)),
				formatter.Bold(taskLabels(ctx, a)(taskID)),
				e.ID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Length of the work, e.g. 1h30m")
	cmd.Flags().Int64Var(&seconds, "seconds", 0, "Length of the work in seconds")
	cmd.Flags().StringVar(&start, "start", "", "Start time (RFC 3339 or HH:MM at --tz)")
	cmd.Flags().StringVar(&end, "end", "", "End time (RFC 3339 or HH:MM at --tz)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the entry")

	return cmd
}

func newEntryListCmd(a *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your entries for a week or a day range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			w, err := a.window(start, end)
			if err != nil {
				return err
			}
			entries, err := a.Entries.ListForUser(ctx, u.ID, w)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEntryList(entries, taskLabels(ctx, a), a.tz.OrZero()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First local day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last local day (YYYY-MM-DD)")

	return cmd
}

func newEntryRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ENTRY_ID",
		Aliases: []string{"delete"},
		Short:   "Delete one of your entries",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			id, err := parseIDArg("entry", args[0])
			if err != nil {
				return err
			}
			if err := a.Entries.Delete(ctx, u.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry #%d\n", id)
			return nil
		},
	}
}

func newEntryNormalizeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Convert legacy manual entries to duration-only form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.Entries.NormalizeLegacy(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Normalized %d legacy entries\n", n)
			return nil
		},
	}
}

// window resolves --start/--end into an instant window at the --tz offset,
// defaulting to the current Sunday-to-Saturday week.
func (a *App) window(start, end string) (report.Window, error) {
	from, err := parseDay("start", start)
	if err != nil {
		return report.Window{}, err
	}
	to, err := parseDay("end", end)
	if err != nil {
		return report.Window{}, err
	}
	switch {
	case from == nil && to == nil:
		return report.DefaultWeek(a.now().UTC(), a.tz.Ptr()), nil
	case from == nil || to == nil:
		return report.Window{}, errors.New("--start and --end must be given together")
	}
	return report.DayWindow(*from, *to, a.tz.OrZero()), nil
}
