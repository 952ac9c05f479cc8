package cli

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/cli/formatter"
	"github.com/alexanderramin/timeledger/internal/domain"
)

func newTimerCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and inspect your running timer",
	}

	cmd.AddCommand(
		newTimerStartCmd(a),
		newTimerStopCmd(a),
		newTimerCancelCmd(a),
		newTimerStatusCmd(a),
		newTimerWatchCmd(a),
	)

	return cmd
}

func newTimerStartCmd(a *App) *cobra.Command {
	var notes, at string

	cmd := &cobra.Command{
		Use:   "start [TASK_ID]",
		Short: "Start a timer on a task",
		Long:  "Start a timer on a task. Without TASK_ID an interactive terminal offers a picker.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}

			var taskID int64
			switch {
			case len(args) == 1:
				if taskID, err = parseIDArg("task", args[0]); err != nil {
					return err
				}
			case a.interactive():
				form, err := taskPickerForm(ctx, a, u.ID, &taskID)
				if err != nil {
					return err
				}
				if form == nil {
					return fmt.Errorf("no tasks available to %s", u.Name)
				}
				if err := form.Run(); err != nil {
					return err
				}
			default:
				return errors.New("task id is required")
			}

			req := app.StartTimerRequest{UserID: u.ID, TaskID: taskID, Notes: notes}
			if at != "" {
				start, err := a.parseInstant(at)
				if err != nil {
					return err
				}
				req.ClientTime = &start
			}
			snap, err := a.Timers.Start(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStarted(snap, taskLabels(ctx, a), a.tz.OrZero()))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the entry")
	cmd.Flags().StringVar(&at, "at", "", "Start time (RFC 3339 or HH:MM at --tz); defaults to now")

	return cmd
}

func newTimerStopCmd(a *App) *cobra.Command {
	var notes, at string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop your running timer and record the time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			snap, err := a.Timers.Current(ctx, u.ID)
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("no running timer: %w", domain.ErrNotFound)
			}

			req := app.StopTimerRequest{UserID: u.ID, TimerID: snap.TimerID}
			if cmd.Flags().Changed("notes") {
				req.Notes = &notes
			}
			if at != "" {
				end, err := a.parseInstant(at)
				if err != nil {
					return err
				}
				req.EndTime = &end
			}
			stopped, err := a.Timers.Stop(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStopped(stopped, taskLabels(ctx, a)))
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Replace the entry's notes")
	cmd.Flags().StringVar(&at, "at", "", "End time (RFC 3339 or HH:MM at --tz); defaults to now")

	return cmd
}

func newTimerCancelCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Discard your running timer without recording time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			snap, err := a.Timers.Current(ctx, u.ID)
			if err != nil {
				return err
			}
			if snap == nil {
				return fmt.Errorf("no running timer: %w", domain.ErrNotFound)
			}

			if !yes && a.interactive() {
				confirmed := false
				title := fmt.Sprintf("Discard %s on timer #%d?", formatter.FormatClock(snap.ElapsedSeconds), snap.TimerID)
				if err := confirmForm(title, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Kept running."))
					return nil
				}
			}

			if err := a.Timers.ForceStop(ctx, u.ID, snap.TimerID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s timer #%d\n", formatter.StyleRed.Render("Discarded"), snap.TimerID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newTimerStatusCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			snap, err := a.Timers.Current(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimer(snap, taskLabels(ctx, a), a.tz.OrZero()))
			return nil
		},
	}
}

func newTimerWatchCmd(a *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of your running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.caller(ctx)
			if err != nil {
				return err
			}
			if !a.interactive() {
				return errors.New("timer watch needs an interactive terminal; use timer status")
			}
			m := newTimerWatchModel(ctx, a, u.ID, interval)
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval")

	return cmd
}
