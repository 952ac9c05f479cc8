package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/cli/formatter"
)

type reportFlags struct {
	start, end string
	user       string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "First local day (YYYY-MM-DD); defaults to this week")
	cmd.Flags().StringVar(&f.end, "end", "", "Last local day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.user, "user", "", "Report on another user (admins only); \"all\" for everyone")
}

// request builds the report request for the caller. The service applies
// the scope rules; the CLI only resolves names.
func (f *reportFlags) request(ctx context.Context, a *App) (app.ReportRequest, error) {
	caller, err := a.caller(ctx)
	if err != nil {
		return app.ReportRequest{}, err
	}
	req := app.ReportRequest{CallerID: caller.ID, UserID: caller.ID, OffsetMinutes: a.tz.Ptr()}
	switch f.user {
	case "":
	case "all":
		req.UserID = 0
	default:
		u, err := resolveUser(ctx, a, f.user)
		if err != nil {
			return app.ReportRequest{}, err
		}
		req.UserID = u.ID
	}
	if req.Start, err = parseDay("start", f.start); err != nil {
		return app.ReportRequest{}, err
	}
	if req.End, err = parseDay("end", f.end); err != nil {
		return app.ReportRequest{}, err
	}
	return req, nil
}

func newReportCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Weekly totals by day, task or project",
	}

	cmd.AddCommand(
		newReportDailyCmd(a),
		newReportTasksCmd(a),
		newReportProjectsCmd(a),
	)

	return cmd
}

func newReportDailyCmd(a *App) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Seconds per weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := f.request(ctx, a)
			if err != nil {
				return err
			}
			rep, err := a.Reports.DailyTotals(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDailyReport(rep))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newReportTasksCmd(a *App) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Per-task totals with a weekday breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := f.request(ctx, a)
			if err != nil {
				return err
			}
			rep, err := a.Reports.TaskTotals(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTaskReport(rep))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newReportProjectsCmd(a *App) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Per-project totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req, err := f.request(ctx, a)
			if err != nil {
				return err
			}
			rep, err := a.Reports.ProjectTotals(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectReport(rep))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
